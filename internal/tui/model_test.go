package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tuitable/internal/catalog"
	"github.com/verte-zerg/tuitable/internal/model"
	"github.com/verte-zerg/tuitable/internal/planner"
	"github.com/verte-zerg/tuitable/internal/searchui"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"schedules-majors.json":       `[{"id":"CS101","title":"Data Structures","grade":2,"credits":"3","major":"CS","schedule":"월9,10(301)"},{"id":"MA201","title":"Linear Algebra","grade":2,"credits":"3","major":"Math","schedule":"화10-11.5(B2)"}]`,
		"schedules-liberal-arts.json": `[]`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	src := planner.NewSource(model.Config{Dir: dir}, nil, nil)
	p := planner.New(catalog.New(src, nil), 100, nil)
	return NewModel(p, nil)
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

// run executes cmd and feeds its message back, the way the program loop would.
func run(m *Model, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	if msg := cmd(); msg != nil {
		m.Update(msg)
	}
}

func loaded(t *testing.T) *Model {
	t.Helper()
	m := newTestModel(t)
	run(m, m.Init())
	if m.planner.CatalogState() != catalog.StateLoaded {
		t.Fatalf("expected catalog loaded, got %v (%s)", m.planner.CatalogState(), m.errMsg)
	}
	return m
}

func TestSeededSearchAddsLecture(t *testing.T) {
	m := loaded(t)
	// Tue, slot 4 (10:30).
	press(m, "right", "down", "down", "down", "enter")
	if m.search == nil {
		t.Fatalf("expected search dialog open")
	}
	session := m.planner.Session()
	c := session.Criteria()
	if len(c.Days) != 1 || c.Days[0] != model.Tue || len(c.Times) != 1 || c.Times[0] != 4 {
		t.Fatalf("expected cell seed, got %+v", c)
	}
	if session.Count() != 1 {
		t.Fatalf("expected one candidate, got %d", session.Count())
	}

	// Move focus to the results table and add the highlighted lecture.
	for i := 0; i < 6; i++ {
		press(m, "tab")
	}
	run(m, press(m, "enter"))
	if m.search != nil {
		t.Fatalf("expected dialog closed after add")
	}
	blocks, _ := m.planner.Tables().Blocks(m.planner.Active())
	if len(blocks) != 1 || blocks[0].Lecture.ID != "MA201" {
		t.Fatalf("unexpected blocks %+v", blocks)
	}
	if !strings.Contains(m.View(), "Linear Alg") {
		t.Fatalf("expected lecture title on the grid")
	}

	press(m, "x")
	if b, _ := m.planner.Tables().Blocks(m.planner.Active()); len(b) != 0 {
		t.Fatalf("expected block deleted from cursor cell, got %d", len(b))
	}
}

func TestEscClosesSearch(t *testing.T) {
	m := loaded(t)
	press(m, "a")
	if m.search == nil {
		t.Fatalf("expected search open")
	}
	run(m, press(m, "esc"))
	if m.search != nil {
		t.Fatalf("expected search closed")
	}
}

func TestSearchBeforeLoadTriggersLoad(t *testing.T) {
	m := newTestModel(t)
	cmd := press(m, "a")
	if m.search != nil {
		t.Fatalf("expected no dialog before load")
	}
	if cmd == nil {
		t.Fatalf("expected load command")
	}
	run(m, cmd)
	if m.planner.CatalogState() != catalog.StateLoaded {
		t.Fatalf("expected catalog loaded")
	}
}

func TestTableKeys(t *testing.T) {
	m := loaded(t)
	first := m.planner.Active()
	press(m, "D")
	if m.errMsg == "" || m.planner.Tables().Len() != 1 {
		t.Fatalf("expected removing the last table to fail")
	}
	if strings.Contains(m.renderFooter(), "remove: D") {
		t.Fatalf("expected remove hint hidden with one table")
	}
	press(m, "d")
	if m.planner.Tables().Len() != 2 || m.planner.Active() == first {
		t.Fatalf("expected duplicate active")
	}
	press(m, "tab")
	if m.planner.Active() != first {
		t.Fatalf("expected tab to cycle back to %s", first)
	}
	press(m, "D")
	if m.planner.Tables().Len() != 1 || m.planner.Active() == first {
		t.Fatalf("expected first table removed")
	}
	press(m, "n")
	if m.planner.Tables().Len() != 2 {
		t.Fatalf("expected new table")
	}
}

func TestAddLectureMsgWithoutSearchReportsError(t *testing.T) {
	m := newTestModel(t)
	m.Update(searchui.AddLectureMsg{Entry: model.CatalogEntry{}})
	if m.errMsg == "" {
		t.Fatalf("expected error status")
	}
}

func TestLayoutGridPlacesBlocks(t *testing.T) {
	blocks := []model.ScheduleBlock{
		{Day: model.Tue, Range: []int{3, 4, 5}, Room: "B2", Lecture: model.LectureSummary{ID: "MA201", Title: "Linear Algebra"}},
		{Day: model.Tue, Range: []int{4}, Lecture: model.LectureSummary{ID: "X", Title: "Overlap"}},
		{Day: model.Sun, Range: []int{1}, Lecture: model.LectureSummary{ID: "S", Title: "Sunday"}},
	}
	grid := layoutGrid(blocks, 10)
	if got := strings.TrimSpace(grid[2][1].text); got != "Linear Al…" && got != "Linear A…" {
		t.Fatalf("unexpected title cell %q", got)
	}
	if got := strings.TrimSpace(grid[3][1].text); got != "B2" {
		t.Fatalf("expected room on second slot, got %q", got)
	}
	if grid[3][1].block.Lecture.ID != "MA201" {
		t.Fatalf("expected first block to win overlap")
	}
	if grid[4][1].block == nil || grid[5][1].block != nil {
		t.Fatalf("expected block to span slots 3-5 only")
	}
}

func TestFitCell(t *testing.T) {
	if got := fitCell("자료구조", 10); got != "자료구조  " {
		t.Fatalf("unexpected padding %q", got)
	}
	if w := len([]rune(fitCell("abc", 5))); w != 5 {
		t.Fatalf("expected 5 columns, got %d", w)
	}
	if got := shortID("schedule-0123456789abcdef"); got != "schedule-01234567" {
		t.Fatalf("unexpected short id %q", got)
	}
}
