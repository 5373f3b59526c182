package searchui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuitable/internal/catalog"
	"github.com/verte-zerg/tuitable/internal/model"
	"github.com/verte-zerg/tuitable/internal/search"
)

var testMajors = []string{"공과대학<p>컴퓨터공학과", "자연과학대학<p>수학과", "교양"}

func testSession(pageSize int) *search.Session {
	entries := catalog.BuildEntries([]model.Lecture{
		{ID: "CS101", Title: "Data Structures", Grade: 2, Credits: "3", Major: testMajors[0], Schedule: "월9,10(301)"},
		{ID: "MA201", Title: "Linear Algebra", Grade: 2, Credits: "3", Major: testMajors[1], Schedule: "화10-11.5"},
		{ID: "CS305", Title: "Operating Systems", Grade: 3, Credits: "3", Major: testMajors[0], Schedule: "수13-14"},
		{ID: "GE001", Title: "Academic Writing", Grade: 1, Credits: "2", Major: testMajors[2], Schedule: "목9-10"},
		{ID: "GE002", Title: "Philosophy", Grade: 1, Credits: "2", Major: testMajors[2], Schedule: "금9-10"},
	})
	s := search.NewSession(entries, pageSize)
	s.Open(model.CellSeed{TableID: "schedule-1"})
	return s
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func send(m *Model, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, msg := range msgs {
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestTypingQueryFilters(t *testing.T) {
	s := testSession(100)
	m := New(s, testMajors)
	send(m, keyRunes("d"), keyRunes("a"), keyRunes("t"), keyRunes("a"))
	if s.Criteria().Query != "data" {
		t.Fatalf("expected query to follow input, got %q", s.Criteria().Query)
	}
	if s.Count() != 1 || m.rowCount != 1 {
		t.Fatalf("expected one result row, got %d/%d", s.Count(), m.rowCount)
	}
}

func TestToggleRows(t *testing.T) {
	s := testSession(100)
	m := New(s, testMajors)

	send(m, key(tea.KeyTab))
	send(m, key(tea.KeyRight), key(tea.KeyRight), key(tea.KeyRight))
	if c := s.Criteria().Credits; c == nil || *c != 3 {
		t.Fatalf("expected credits 3, got %v", c)
	}
	send(m, key(tea.KeyRight))
	if s.Criteria().Credits != nil {
		t.Fatalf("expected credits to cycle back to any")
	}

	send(m, key(tea.KeyTab), key(tea.KeySpace))
	if got := fmt.Sprint(s.Criteria().Grades); got != "[1]" {
		t.Fatalf("expected grade 1 toggled, got %s", got)
	}
	send(m, key(tea.KeySpace))
	if len(s.Criteria().Grades) != 0 {
		t.Fatalf("expected grade 1 toggled off")
	}

	send(m, key(tea.KeyTab), key(tea.KeyRight), key(tea.KeyEnter))
	if days := s.Criteria().Days; len(days) != 1 || days[0] != model.Tue {
		t.Fatalf("expected Tue toggled, got %v", days)
	}

	send(m, key(tea.KeyTab), key(tea.KeyRight), key(tea.KeyRight), key(tea.KeyRight), key(tea.KeySpace))
	if times := s.Criteria().Times; len(times) != 1 || times[0] != 4 {
		t.Fatalf("expected slot 4 toggled, got %v", times)
	}
	if s.Count() != 1 || s.Results()[0].ID != "MA201" {
		t.Fatalf("expected MA201 only, got %d", s.Count())
	}
}

func TestMajorPickerNarrowsAndToggles(t *testing.T) {
	s := testSession(100)
	m := New(s, testMajors)
	m.setFocus(fieldMajors)

	send(m, keyRunes("수"), keyRunes("학"))
	if len(m.majorHits) != 1 || testMajors[m.majorHits[0]] != testMajors[1] {
		t.Fatalf("expected math major only, got %v", m.majorHits)
	}
	send(m, key(tea.KeyEnter))
	if majors := s.Criteria().Majors; len(majors) != 1 || majors[0] != testMajors[1] {
		t.Fatalf("expected raw major selected, got %v", majors)
	}
	if s.Count() != 1 {
		t.Fatalf("expected one math lecture, got %d", s.Count())
	}
	if !strings.Contains(m.View(), "수학과") {
		t.Fatalf("expected major tag in view")
	}
}

func TestMatchMajorsEmptyQueryKeepsOrder(t *testing.T) {
	if got := fmt.Sprint(matchMajors(testMajors, "")); got != "[0 1 2]" {
		t.Fatalf("unexpected order %s", got)
	}
}

func TestResultsRevealNextPageAtEnd(t *testing.T) {
	s := testSession(2)
	m := New(s, testMajors)
	m.setFocus(fieldResults)
	if m.rowCount != 2 {
		t.Fatalf("expected first page of 2 rows, got %d", m.rowCount)
	}
	send(m, key(tea.KeyDown))
	if s.Page() != 2 || m.rowCount != 4 {
		t.Fatalf("expected page 2 after reaching last row, got page %d rows %d", s.Page(), m.rowCount)
	}
	if m.results.Cursor() != 1 {
		t.Fatalf("expected cursor kept on row 1, got %d", m.results.Cursor())
	}
	send(m, key(tea.KeyDown), key(tea.KeyDown))
	if s.Page() != 3 || m.rowCount != 5 {
		t.Fatalf("expected page 3 with all rows, got page %d rows %d", s.Page(), m.rowCount)
	}
	send(m, key(tea.KeyDown), key(tea.KeyDown))
	if s.Page() != 3 {
		t.Fatalf("expected page to saturate at 3, got %d", s.Page())
	}
}

func TestCriteriaChangeScrollsToTop(t *testing.T) {
	s := testSession(100)
	m := New(s, testMajors)
	m.setFocus(fieldResults)
	send(m, key(tea.KeyDown), key(tea.KeyDown))
	if m.results.Cursor() != 2 {
		t.Fatalf("expected cursor on row 2, got %d", m.results.Cursor())
	}
	m.setFocus(fieldGrades)
	send(m, key(tea.KeySpace))
	if m.results.Cursor() != 0 {
		t.Fatalf("expected scroll reset to top, got %d", m.results.Cursor())
	}
}

func TestEnterAddsAndEscCloses(t *testing.T) {
	s := testSession(100)
	m := New(s, testMajors)
	m.setFocus(fieldResults)
	send(m, key(tea.KeyDown))
	cmd := send(m, key(tea.KeyEnter))
	if cmd == nil {
		t.Fatalf("expected add command")
	}
	msg, ok := cmd().(AddLectureMsg)
	if !ok || msg.Entry.ID != "MA201" {
		t.Fatalf("expected AddLectureMsg for MA201, got %#v", msg)
	}

	cmd = send(m, key(tea.KeyEsc))
	if cmd == nil {
		t.Fatalf("expected close command")
	}
	if _, ok := cmd().(CloseMsg); !ok {
		t.Fatalf("expected CloseMsg")
	}
}

func TestViewShowsTargetAndCount(t *testing.T) {
	s := testSession(100)
	m := New(s, testMajors)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	for _, want := range []string{"schedule-1", "5 results", "CS101"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected %q in view", want)
		}
	}
}
