package search

import (
	"fmt"
	"testing"

	"github.com/verte-zerg/tuitable/internal/catalog"
	"github.com/verte-zerg/tuitable/internal/model"
)

func sampleEntries() []model.CatalogEntry {
	return catalog.BuildEntries([]model.Lecture{
		{ID: "CS101", Title: "Data Structures", Grade: 2, Credits: "3", Major: "CS", Schedule: "월9,10(301)"},
		{ID: "MA201", Title: "Linear Algebra", Grade: 2, Credits: "3", Major: "Math", Schedule: "화10-11.5"},
		{ID: "CS305", Title: "Operating Systems", Grade: 3, Credits: "3.5", Major: "CS", Schedule: "수13-14<p>금13-14"},
		{ID: "GE001", Title: "Academic Writing", Grade: 1, Credits: "2", Major: "교양", Schedule: ""},
	})
}

func ids(entries []model.CatalogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.ID
	}
	return out
}

func intPtr(v int) *int { return &v }

func TestFilterEmptyCriteriaReturnsAll(t *testing.T) {
	entries := sampleEntries()
	got := Filter(entries, model.SearchCriteria{})
	if fmt.Sprint(ids(got)) != fmt.Sprint(ids(entries)) {
		t.Fatalf("expected all entries in order, got %v", ids(got))
	}
}

func TestFilterCriteria(t *testing.T) {
	entries := sampleEntries()
	tests := []struct {
		name     string
		criteria model.SearchCriteria
		want     string
	}{
		{"query title case-insensitive", model.SearchCriteria{Query: "linear"}, "[MA201]"},
		{"query id", model.SearchCriteria{Query: "cs"}, "[CS101 CS305]"},
		{"grades any-of", model.SearchCriteria{Grades: []int{1, 3}}, "[CS305 GE001]"},
		{"majors", model.SearchCriteria{Majors: []string{"Math", "교양"}}, "[MA201 GE001]"},
		{"credits prefix", model.SearchCriteria{Credits: intPtr(3)}, "[CS101 MA201 CS305]"},
		{"credits zero ignored", model.SearchCriteria{Credits: intPtr(0)}, "[CS101 MA201 CS305 GE001]"},
		{"day any block", model.SearchCriteria{Days: []model.Day{model.Fri}}, "[CS305]"},
		{"time any slot", model.SearchCriteria{Times: []int{4}}, "[MA201]"},
		{"day and time need not share a block", model.SearchCriteria{Days: []model.Day{model.Wed}, Times: []int{9}}, "[CS305]"},
		{"no blocks never match a day", model.SearchCriteria{Days: []model.Day{model.Mon, model.Tue}}, "[CS101 MA201]"},
		{"combined", model.SearchCriteria{Query: "cs", Grades: []int{2}}, "[CS101]"},
		{"nothing", model.SearchCriteria{Query: "zzz"}, "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fmt.Sprint(ids(Filter(entries, tt.criteria)))
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestFilterIsIdempotentSubsequence(t *testing.T) {
	entries := sampleEntries()
	c := model.SearchCriteria{Query: "s", Grades: []int{2, 3}}
	once := Filter(entries, c)
	twice := Filter(once, c)
	if fmt.Sprint(ids(once)) != fmt.Sprint(ids(twice)) {
		t.Fatalf("expected idempotent filter, got %v then %v", ids(once), ids(twice))
	}
	j := 0
	for _, e := range entries {
		if j < len(once) && once[j].ID == e.ID {
			j++
		}
	}
	if j != len(once) {
		t.Fatalf("expected result to be a subsequence of input")
	}
}

func TestParseCredits(t *testing.T) {
	tests := map[string]*int{
		"3":   intPtr(3),
		" 2 ": intPtr(2),
		"":    nil,
		"abc": nil,
		"0":   nil,
		"-1":  nil,
		"3.5": nil,
	}
	for in, want := range tests {
		got := ParseCredits(in)
		if (got == nil) != (want == nil) || (got != nil && *got != *want) {
			t.Fatalf("ParseCredits(%q): expected %v, got %v", in, want, got)
		}
	}
}
