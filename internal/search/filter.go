// Package search filters and pages the lecture catalog.
package search

import (
	"strconv"
	"strings"

	"github.com/verte-zerg/tuitable/internal/model"
)

// Filter returns the entries matching every criterion, in input order.
// Within a criterion any listed value matches; an empty list matches all.
func Filter(entries []model.CatalogEntry, c model.SearchCriteria) []model.CatalogEntry {
	m := newMatcher(c)
	out := make([]model.CatalogEntry, 0, len(entries))
	for i := range entries {
		if m.match(&entries[i]) {
			out = append(out, entries[i])
		}
	}
	return out
}

// ParseCredits reads a free-text credits value. Anything that is not a
// positive integer means no credit filter.
func ParseCredits(s string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

type matcher struct {
	query   string
	credits string
	grades  map[int]struct{}
	days    map[model.Day]struct{}
	times   map[int]struct{}
	majors  map[string]struct{}
}

func newMatcher(c model.SearchCriteria) matcher {
	m := matcher{
		query:  strings.ToLower(c.Query),
		grades: setOf(c.Grades),
		days:   setOf(c.Days),
		times:  setOf(c.Times),
		majors: setOf(c.Majors),
	}
	if c.Credits != nil && *c.Credits > 0 {
		m.credits = strconv.Itoa(*c.Credits)
	}
	return m
}

func setOf[T comparable](values []T) map[T]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[T]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func (m matcher) match(e *model.CatalogEntry) bool {
	if m.query != "" && !strings.Contains(e.TitleKey, m.query) && !strings.Contains(e.IDKey, m.query) {
		return false
	}
	if m.grades != nil {
		if _, ok := m.grades[e.Grade]; !ok {
			return false
		}
	}
	if m.majors != nil {
		if _, ok := m.majors[e.Major]; !ok {
			return false
		}
	}
	// Credits compare as a text prefix, so 3 also matches "3.5".
	if m.credits != "" && !strings.HasPrefix(e.Credits, m.credits) {
		return false
	}
	if m.days != nil && !m.anyDay(e.Blocks) {
		return false
	}
	if m.times != nil && !m.anyTime(e.Blocks) {
		return false
	}
	return true
}

func (m matcher) anyDay(blocks []model.ScheduleBlock) bool {
	for _, b := range blocks {
		if _, ok := m.days[b.Day]; ok {
			return true
		}
	}
	return false
}

func (m matcher) anyTime(blocks []model.ScheduleBlock) bool {
	for _, b := range blocks {
		for _, s := range b.Range {
			if _, ok := m.times[s]; ok {
				return true
			}
		}
	}
	return false
}
