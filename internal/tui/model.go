// Package tui provides the Bubble Tea timetable interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/tuitable/internal/catalog"
	"github.com/verte-zerg/tuitable/internal/model"
	"github.com/verte-zerg/tuitable/internal/planner"
	"github.com/verte-zerg/tuitable/internal/searchui"
)

const loadTimeout = 2 * time.Minute

var (
	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

type catalogLoadedMsg struct {
	err error
}

// Model implements the Bubble Tea timetable UI.
type Model struct {
	planner *planner.Planner
	logger  *zap.Logger

	width  int
	height int

	dayIdx int
	slot   int

	search *searchui.Model

	status string
	errMsg string
}

// NewModel constructs the timetable UI.
func NewModel(p *planner.Planner, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Model{planner: p, logger: logger, slot: 1}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	m.status = "loading catalog…"
	return loadCatalog(m.planner)
}

func loadCatalog(p *planner.Planner) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return catalogLoadedMsg{err: p.Load(ctx)}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.search != nil {
			m.search.Update(msg)
		}
		return m, nil
	case catalogLoadedMsg:
		if msg.err != nil {
			m.status = ""
			m.errMsg = "catalog load failed (r to retry): " + msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.status = fmt.Sprintf("catalog ready: %d majors", len(m.planner.Majors()))
		return m, nil
	case searchui.AddLectureMsg:
		m.search = nil
		if err := m.planner.AddLecture(msg.Entry); err != nil {
			m.setError(err)
			return m, nil
		}
		m.status = fmt.Sprintf("added %s %s", msg.Entry.ID, msg.Entry.Title)
		return m, nil
	case searchui.CloseMsg:
		m.search = nil
		return m, nil
	}
	if m.search != nil {
		_, cmd := m.search.Update(msg)
		return m, cmd
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		return m.updateGrid(key)
	}
	return m, nil
}

func (m *Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "left", "h":
		m.dayIdx = clamp(m.dayIdx-1, 0, len(gridDays)-1)
	case "right", "l":
		m.dayIdx = clamp(m.dayIdx+1, 0, len(gridDays)-1)
	case "up", "k":
		m.slot = clamp(m.slot-1, 1, slotRows)
	case "down", "j":
		m.slot = clamp(m.slot+1, 1, slotRows)
	case "tab":
		m.planner.CycleActive(1)
	case "shift+tab":
		m.planner.CycleActive(-1)
	case "enter":
		day := gridDays[m.dayIdx]
		slot := m.slot
		return m.openSearch(model.CellSeed{TableID: m.planner.Active(), Day: &day, Time: &slot})
	case "a":
		return m.openSearch(model.CellSeed{TableID: m.planner.Active()})
	case "x":
		id := m.planner.Active()
		if _, ok := m.planner.Tables().BlockAt(id, gridDays[m.dayIdx], m.slot); !ok {
			return m, nil
		}
		if err := m.planner.DeleteBlock(id, gridDays[m.dayIdx], m.slot); err != nil {
			m.setError(err)
		}
	case "n":
		m.status = "created " + m.planner.NewTable()
	case "d":
		id, err := m.planner.DuplicateTable(m.planner.Active())
		if err != nil {
			m.setError(err)
			return m, nil
		}
		m.status = "duplicated into " + id
	case "D":
		id := m.planner.Active()
		if err := m.planner.RemoveTable(id); err != nil {
			m.setError(err)
			return m, nil
		}
		m.status = "removed " + id
	case "r":
		if m.planner.CatalogState() == catalog.StateEmpty {
			m.status = "loading catalog…"
			return m, loadCatalog(m.planner)
		}
	}
	return m, nil
}

func (m *Model) openSearch(seed model.CellSeed) (tea.Model, tea.Cmd) {
	session, err := m.planner.OpenSearch(seed)
	if err != nil {
		if errors.Is(err, planner.ErrCatalogNotLoaded) && m.planner.CatalogState() == catalog.StateEmpty {
			m.status = "loading catalog…"
			return m, loadCatalog(m.planner)
		}
		m.setError(err)
		return m, nil
	}
	m.search = searchui.New(session, m.planner.Majors())
	if m.width > 0 {
		m.search.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
	}
	return m, m.search.Init()
}

func (m *Model) setError(err error) {
	m.status = ""
	m.errMsg = err.Error()
	m.logger.Warn("action failed", zap.Error(err))
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.search != nil {
		return m.search.View()
	}
	sets := m.planner.Tables()
	active := m.planner.Active()
	blocks, _ := sets.Blocks(active)

	parts := []string{
		m.renderTabs(sets.IDs(), active),
		renderGrid(blocks, m.dayIdx, m.slot, m.width),
		m.renderFooter(),
	}
	return strings.Join(parts, "\n")
}

func (m *Model) renderTabs(ids []string, active string) string {
	tabs := make([]string, 0, len(ids))
	for i, id := range ids {
		label := fmt.Sprintf("%d %s", i+1, shortID(id))
		if id == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderFooter() string {
	help := "move: arrows  search cell: enter  search: a  delete: x  new: n  dup: d  remove: D  tables: tab  quit: q"
	if !m.planner.CanRemove() {
		help = strings.Replace(help, "  remove: D", "", 1)
	}
	lines := []string{footerStyle.Render(help)}
	switch {
	case m.errMsg != "":
		lines = append(lines, errorStyle.Render(m.errMsg))
	case m.status != "":
		lines = append(lines, statusStyle.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

// shortID keeps generated table ids readable in the tab bar.
func shortID(id string) string {
	const keep = 8
	rest, ok := strings.CutPrefix(id, "schedule-")
	if !ok || len(rest) <= keep {
		return id
	}
	return "schedule-" + rest[:keep]
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
