package schedule

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/verte-zerg/tuitable/internal/model"
)

// group is one DAY RANGE,RANGE...(ROOM) section of a schedule string.
type group struct {
	day   model.Day
	times strings.Builder
	room  strings.Builder
	rooms int
}

// Parse extracts schedule blocks from text such as "월9,10(301)" or
// "화13-14.5(공학관 201)<p>목13-14.5(공학관 201)". Hours are decimal
// (10.5 is 10:30). A dashed range "a-b" covers [a, b); two bare hours in a row
// are read the same way, so "9,10" is 09:00 to 10:00. A lone bare hour is the
// single slot it starts in.
//
// Parsing is best effort: unreadable groups and tokens are skipped and the
// result holds whatever could be extracted. Each contiguous run of slots on a
// day becomes its own block. Lecture is left blank for the caller to fill.
func Parse(text string) []model.ScheduleBlock {
	var out []model.ScheduleBlock
	for _, g := range splitGroups(text) {
		out = append(out, g.blocks()...)
	}
	return out
}

func splitGroups(text string) []*group {
	runes := []rune(strings.ReplaceAll(text, "<p>", " "))
	var groups []*group
	var cur *group
	depth := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '(':
			depth++
			if depth == 1 && cur != nil {
				cur.rooms++
			}
			continue
		case r == ')':
			if depth > 0 {
				depth--
			}
			continue
		case depth > 0:
			if cur != nil && cur.rooms == 1 {
				cur.room.WriteRune(r)
			}
			continue
		}
		if day, ok := model.ParseDay(string(r)); ok && !unicode.IsLetter(prevRune(runes, i)) {
			cur = &group{day: day}
			groups = append(groups, cur)
			continue
		}
		if isLatin(r) {
			end := i
			for end < len(runes) && isLatin(runes[end]) {
				end++
			}
			word := string(runes[i:end])
			i = end - 1
			if day, ok := model.ParseDay(word); ok {
				cur = &group{day: day}
				groups = append(groups, cur)
			}
			continue
		}
		if cur != nil {
			cur.times.WriteRune(r)
		}
	}
	return groups
}

func prevRune(runes []rune, i int) rune {
	if i == 0 {
		return ' '
	}
	return runes[i-1]
}

func isLatin(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func (g *group) blocks() []model.ScheduleBlock {
	slots := g.slots()
	if len(slots) == 0 {
		return nil
	}
	room := strings.TrimSpace(g.room.String())
	var out []model.ScheduleBlock
	run := []int{slots[0]}
	for _, s := range slots[1:] {
		if s == run[len(run)-1]+1 {
			run = append(run, s)
			continue
		}
		out = append(out, model.ScheduleBlock{Day: g.day, Range: run, Room: room})
		run = []int{s}
	}
	return append(out, model.ScheduleBlock{Day: g.day, Range: run, Room: room})
}

func (g *group) slots() []int {
	set := map[int]struct{}{}
	addSingle := func(h float64) {
		if s, ok := slotAt(toMinutes(h)); ok {
			set[s] = struct{}{}
		}
	}
	addRange := func(start, end float64) {
		s, ok := slotAt(toMinutes(start))
		if !ok {
			return
		}
		e, ok := lastSlotBefore(toMinutes(end))
		if !ok || e < s {
			e = s
		}
		for i := s; i <= e; i++ {
			set[i] = struct{}{}
		}
	}

	var pending *float64
	for _, tok := range strings.Split(g.times.String(), ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if sep := strings.IndexAny(tok, "-~"); sep >= 0 {
			start, err1 := strconv.ParseFloat(strings.TrimSpace(tok[:sep]), 64)
			end, err2 := strconv.ParseFloat(strings.TrimSpace(tok[sep+1:]), 64)
			if err1 != nil || err2 != nil {
				continue
			}
			if pending != nil {
				addSingle(*pending)
				pending = nil
			}
			addRange(start, end)
			continue
		}
		h, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		switch {
		case pending == nil:
			pending = &h
		case h > *pending:
			addRange(*pending, h)
			pending = nil
		default:
			addSingle(*pending)
			pending = &h
		}
	}
	if pending != nil {
		addSingle(*pending)
	}

	out := make([]int, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Ints(out)
	return out
}

func toMinutes(h float64) int {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return -1
	}
	return int(math.Round(h * 60))
}
