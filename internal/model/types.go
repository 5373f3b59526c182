// Package model defines shared data structures.
package model

import (
	"strconv"
	"strings"
	"time"
)

// Day is a weekday a schedule block can occupy.
type Day int

// Weekdays, Monday first.
const (
	Mon Day = iota
	Tue
	Wed
	Thu
	Fri
	Sat
	Sun
)

// AllDays lists every day accepted by the parser.
var AllDays = []Day{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

// FilterDays lists the days offered by the search filter.
var FilterDays = []Day{Mon, Tue, Wed, Thu, Fri, Sat}

var (
	dayLabels = [...]string{"월", "화", "수", "목", "금", "토", "일"}
	dayNames  = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
)

// Label returns the Korean single-character label used in schedule text.
func (d Day) Label() string {
	if d < Mon || d > Sun {
		return "?"
	}
	return dayLabels[d]
}

// String returns the English short name.
func (d Day) String() string {
	if d < Mon || d > Sun {
		return "Day(" + strconv.Itoa(int(d)) + ")"
	}
	return dayNames[d]
}

// ParseDay accepts a Korean label ("월") or an English name ("Mon", "monday").
func ParseDay(s string) (Day, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	for i, label := range dayLabels {
		if s == label {
			return Day(i), true
		}
	}
	lower := strings.ToLower(s)
	if len(lower) < 3 {
		return 0, false
	}
	for i, name := range dayNames {
		if strings.HasPrefix(lower, strings.ToLower(name)) {
			return Day(i), true
		}
	}
	return 0, false
}

// Lecture is a raw catalog record as delivered by the catalog source.
type Lecture struct {
	ID       string `json:"id" msgpack:"id"`
	Title    string `json:"title" msgpack:"title"`
	Grade    int    `json:"grade" msgpack:"grade"`
	Credits  string `json:"credits" msgpack:"credits"`
	Major    string `json:"major" msgpack:"major"`
	Schedule string `json:"schedule" msgpack:"schedule"`
}

// LectureSummary is the immutable snapshot embedded in every ScheduleBlock.
type LectureSummary struct {
	ID           string
	Title        string
	Grade        int
	Credits      string
	Major        string
	ScheduleText string
}

// Summary returns the embeddable snapshot of the record.
func (l Lecture) Summary() LectureSummary {
	return LectureSummary{
		ID:           l.ID,
		Title:        l.Title,
		Grade:        l.Grade,
		Credits:      l.Credits,
		Major:        l.Major,
		ScheduleText: l.Schedule,
	}
}

// ScheduleBlock is one contiguous run of time slots on a single day.
// Range is non-empty and sorted ascending.
type ScheduleBlock struct {
	Day     Day
	Range   []int
	Room    string
	Lecture LectureSummary
}

// Contains reports whether the block covers the given slot.
func (b ScheduleBlock) Contains(slot int) bool {
	for _, s := range b.Range {
		if s == slot {
			return true
		}
	}
	return false
}

// Clone returns a copy that does not share the Range backing array.
func (b ScheduleBlock) Clone() ScheduleBlock {
	b.Range = append([]int(nil), b.Range...)
	return b
}

// CatalogEntry is a lecture with its derived search data, built once at load.
type CatalogEntry struct {
	Lecture
	Blocks   []ScheduleBlock
	TitleKey string
	IDKey    string
}

// SearchCriteria holds the user-editable filters. Empty sets do not restrict.
type SearchCriteria struct {
	Query   string
	Grades  []int
	Days    []Day
	Times   []int
	Majors  []string
	Credits *int
}

// Clone returns a deep copy.
func (c SearchCriteria) Clone() SearchCriteria {
	out := SearchCriteria{
		Query:  c.Query,
		Grades: append([]int(nil), c.Grades...),
		Days:   append([]Day(nil), c.Days...),
		Times:  append([]int(nil), c.Times...),
		Majors: append([]string(nil), c.Majors...),
	}
	if c.Credits != nil {
		v := *c.Credits
		out.Credits = &v
	}
	return out
}

// CellSeed describes a click on a timetable: the target table and, optionally,
// the day and slot of the clicked cell.
type CellSeed struct {
	TableID string
	Day     *Day
	Time    *int
}

// Config defines runtime settings after config file and flags are merged.
type Config struct {
	BaseURL     string
	Dir         string
	Majors      string
	LiberalArts string
	CacheTTL    time.Duration
	Timeout     time.Duration
	PageSize    int
	LogLevel    string
	LogFormat   string
}
