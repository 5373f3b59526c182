// Package searchui provides the Bubble Tea lecture search dialog.
package searchui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/verte-zerg/tuitable/internal/catalog"
	"github.com/verte-zerg/tuitable/internal/model"
	"github.com/verte-zerg/tuitable/internal/schedule"
	"github.com/verte-zerg/tuitable/internal/search"
)

// Fields of the dialog, in tab order.
const (
	fieldQuery = iota
	fieldCredits
	fieldGrades
	fieldDays
	fieldTimes
	fieldMajors
	fieldResults
	fieldCount
)

const (
	majorListHeight = 5
	minTableHeight  = 3
)

var (
	// CreditChoices are the values offered by the credits selector; 0 is "any".
	CreditChoices = []int{0, 1, 2, 3}
	// GradeChoices are the grades offered by the grade filter.
	GradeChoices = []int{1, 2, 3, 4}
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	focusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	checkedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	hoverStyle    = lipgloss.NewStyle().Underline(true)
	slotOnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	tableMuted    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

var modalStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder(), true).
	BorderForeground(lipgloss.Color("#C89A3A")).
	Padding(0, 1)

// AddLectureMsg asks the owner to add a lecture to the session's table.
type AddLectureMsg struct {
	Entry model.CatalogEntry
}

// CloseMsg asks the owner to close the dialog.
type CloseMsg struct{}

// Model implements the search dialog over a search.Session.
type Model struct {
	session *search.Session
	majors  []string

	focus      int
	queryInput textinput.Model
	majorInput textinput.Model

	creditIdx   int
	gradeCursor int
	dayCursor   int
	timeCursor  int
	majorCursor int
	majorHits   []int

	results     table.Model
	rowCount    int
	scrollReset bool

	width  int
	height int
}

// New returns a dialog bound to session. majors are the raw major strings in
// catalog order.
func New(session *search.Session, majors []string) *Model {
	m := &Model{
		session: session,
		majors:  majors,
	}
	m.queryInput = newInput("Search: ", "title or code")
	m.queryInput.SetValue(session.Criteria().Query)
	m.majorInput = newInput("Major: ", "type to narrow")
	m.creditIdx = creditIndex(session.Criteria().Credits)
	m.results = newResultsTable()
	m.refreshMajorHits()

	session.SetScrollReset(func() { m.scrollReset = true })
	m.scrollReset = true
	m.syncResults()
	m.setFocus(fieldQuery)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			return m, func() tea.Msg { return CloseMsg{} }
		case tea.KeyTab:
			return m, m.setFocus(m.focus + 1)
		case tea.KeyShiftTab:
			return m, m.setFocus(m.focus - 1)
		}
		var cmd tea.Cmd
		switch m.focus {
		case fieldQuery:
			cmd = m.updateQuery(msg)
		case fieldCredits:
			m.updateCredits(msg)
		case fieldGrades:
			m.updateGrades(msg)
		case fieldDays:
			m.updateDays(msg)
		case fieldTimes:
			m.updateTimes(msg)
		case fieldMajors:
			cmd = m.updateMajors(msg)
		case fieldResults:
			cmd = m.updateResults(msg)
		}
		m.syncResults()
		return m, cmd
	}
	var cmd tea.Cmd
	switch m.focus {
	case fieldQuery:
		m.queryInput, cmd = m.queryInput.Update(msg)
	case fieldMajors:
		m.majorInput, cmd = m.majorInput.Update(msg)
	}
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	width := m.innerWidth()
	lines := []string{
		titleStyle.Render("Lecture search") + mutedStyle.Render("  → "+m.session.TableID()),
		m.queryInput.View(),
		m.renderChoices(fieldCredits, "Credits", len(CreditChoices), m.creditIdx, func(i int) (string, bool) {
			if CreditChoices[i] == 0 {
				return "any", i == m.creditIdx
			}
			return strconv.Itoa(CreditChoices[i]), i == m.creditIdx
		}),
		m.renderChoices(fieldGrades, "Grade", len(GradeChoices), m.gradeCursor, func(i int) (string, bool) {
			return strconv.Itoa(GradeChoices[i]), slices.Contains(m.session.Criteria().Grades, GradeChoices[i])
		}),
		m.renderChoices(fieldDays, "Day", len(model.FilterDays), m.dayCursor, func(i int) (string, bool) {
			return model.FilterDays[i].Label(), slices.Contains(m.session.Criteria().Days, model.FilterDays[i])
		}),
		m.renderSlots(),
	}
	if m.focus == fieldTimes {
		lines = append(lines, mutedStyle.Render("      slot "+strconv.Itoa(m.timeCursor+1)+": "+schedule.SlotLabel(m.timeCursor+1)))
	}
	lines = append(lines, m.renderMajors()...)
	lines = append(lines,
		labelStyle.Render(fmt.Sprintf("%d results  (page %d/%d)", m.session.Count(), m.session.Page(), max(m.session.LastPage(), 1))),
		tableMuted.Render(m.results.View()),
		mutedStyle.Render(m.help()),
	)
	box := modalStyle.Width(width).Render(strings.Join(lines, "\n"))
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func (m *Model) help() string {
	switch m.focus {
	case fieldQuery:
		return "type to search  tab: next field  esc: close"
	case fieldMajors:
		return "type to narrow  up/down: move  enter: toggle  tab: next  esc: close"
	case fieldResults:
		return "up/down: move  enter: add to table  tab: next  esc: close"
	default:
		return "left/right: move  space/enter: toggle  tab: next  esc: close"
	}
}

func (m *Model) updateQuery(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	m.queryInput, cmd = m.queryInput.Update(msg)
	m.session.SetQuery(m.queryInput.Value())
	return cmd
}

func (m *Model) updateCredits(msg tea.KeyMsg) {
	switch msg.String() {
	case "left", "h":
		m.creditIdx = wrap(m.creditIdx-1, len(CreditChoices))
	case "right", "l", " ", "enter":
		m.creditIdx = wrap(m.creditIdx+1, len(CreditChoices))
	default:
		return
	}
	var credits *int
	if v := CreditChoices[m.creditIdx]; v > 0 {
		credits = &v
	}
	m.session.SetCredits(credits)
}

func (m *Model) updateGrades(msg tea.KeyMsg) {
	if moveCursor(msg, &m.gradeCursor, len(GradeChoices)) {
		return
	}
	if isToggle(msg) {
		m.session.ToggleGrade(GradeChoices[m.gradeCursor])
	}
}

func (m *Model) updateDays(msg tea.KeyMsg) {
	if moveCursor(msg, &m.dayCursor, len(model.FilterDays)) {
		return
	}
	if isToggle(msg) {
		m.session.ToggleDay(model.FilterDays[m.dayCursor])
	}
}

func (m *Model) updateTimes(msg tea.KeyMsg) {
	if moveCursor(msg, &m.timeCursor, schedule.SlotCount) {
		return
	}
	if isToggle(msg) {
		m.session.ToggleTime(m.timeCursor + 1)
	}
}

func (m *Model) updateMajors(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyUp:
		if m.majorCursor > 0 {
			m.majorCursor--
		}
		return nil
	case tea.KeyDown:
		if m.majorCursor < len(m.majorHits)-1 {
			m.majorCursor++
		}
		return nil
	case tea.KeyEnter:
		if m.majorCursor < len(m.majorHits) {
			m.session.ToggleMajor(m.majors[m.majorHits[m.majorCursor]])
		}
		return nil
	}
	var cmd tea.Cmd
	before := m.majorInput.Value()
	m.majorInput, cmd = m.majorInput.Update(msg)
	if m.majorInput.Value() != before {
		m.refreshMajorHits()
	}
	return cmd
}

func (m *Model) updateResults(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEnter {
		visible := m.session.Visible()
		idx := m.results.Cursor()
		if idx < 0 || idx >= len(visible) {
			return nil
		}
		entry := visible[idx]
		return func() tea.Msg { return AddLectureMsg{Entry: entry} }
	}
	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	m.observeSentinel()
	return cmd
}

// observeSentinel treats the last revealed row as the sentinel: reaching it
// reveals the next page.
func (m *Model) observeSentinel() {
	atEnd := m.rowCount > 0 && m.results.Cursor() >= m.rowCount-1
	m.session.Observe(atEnd)
}

// syncResults pushes newly revealed rows into the table and scrolls back to
// the top after a criteria change.
func (m *Model) syncResults() {
	visible := m.session.Visible()
	if !m.scrollReset && len(visible) == m.rowCount {
		return
	}
	cursor := m.results.Cursor()
	m.results.SetRows(buildRows(visible))
	m.rowCount = len(visible)
	if m.scrollReset {
		m.results.GotoTop()
		m.scrollReset = false
		return
	}
	m.results.SetCursor(cursor)
}

func (m *Model) refreshMajorHits() {
	m.majorHits = matchMajors(m.majors, m.majorInput.Value())
	m.majorCursor = 0
}

func (m *Model) setFocus(idx int) tea.Cmd {
	m.focus = wrap(idx, fieldCount)
	m.queryInput.Blur()
	m.majorInput.Blur()
	m.results.Blur()
	switch m.focus {
	case fieldQuery:
		return m.queryInput.Focus()
	case fieldMajors:
		return m.majorInput.Focus()
	case fieldResults:
		m.results.Focus()
	}
	return nil
}

func (m *Model) updateLayout() {
	width := m.innerWidth()
	m.queryInput.Width = max(10, width-lipgloss.Width(m.queryInput.Prompt)-1)
	m.majorInput.Width = max(10, width-lipgloss.Width(m.majorInput.Prompt)-1)
	m.results.SetColumns(resultColumns(width))
	// Everything above and below the table: title, inputs, choice rows, the
	// major list, the counter, help and the border.
	chrome := 9 + majorListHeight + 4
	m.results.SetHeight(max(minTableHeight, m.height-chrome))
}

func (m *Model) innerWidth() int {
	if m.width <= 0 {
		return 96
	}
	return max(40, min(m.width-4, 120))
}

func (m *Model) renderChoices(field int, label string, n, cursorIdx int, item func(int) (string, bool)) string {
	head := labelStyle.Render(fmt.Sprintf("%-8s", label))
	if m.focus == field {
		head = focusStyle.Render(fmt.Sprintf("%-8s", label))
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		text, checked := item(i)
		box := "[ ]"
		style := mutedStyle
		if checked {
			box = "[x]"
			style = checkedStyle
		}
		cell := style.Render(box + text)
		if m.focus == field && i == cursorIdx {
			cell = hoverStyle.Render(box + text)
		}
		parts = append(parts, cell)
	}
	return head + strings.Join(parts, " ")
}

// renderSlots draws the 24 time slots compactly: selected slots are
// highlighted instead of boxed.
func (m *Model) renderSlots() string {
	head := labelStyle.Render(fmt.Sprintf("%-8s", "Time"))
	if m.focus == fieldTimes {
		head = focusStyle.Render(fmt.Sprintf("%-8s", "Time"))
	}
	times := m.session.Criteria().Times
	parts := make([]string, 0, schedule.SlotCount)
	for i := 1; i <= schedule.SlotCount; i++ {
		style := mutedStyle
		if slices.Contains(times, i) {
			style = slotOnStyle
		}
		if m.focus == fieldTimes && i == m.timeCursor+1 {
			style = style.Underline(true)
		}
		parts = append(parts, style.Render(fmt.Sprintf("%2d", i)))
	}
	return head + strings.Join(parts, " ")
}

func (m *Model) renderMajors() []string {
	selected := m.session.Criteria().Majors
	tags := make([]string, 0, len(selected))
	for _, major := range selected {
		tags = append(tags, catalog.MajorTag(major))
	}
	summary := "all majors"
	if len(tags) > 0 {
		summary = strings.Join(tags, ", ")
	}
	head := labelStyle.Render("Majors  ")
	if m.focus == fieldMajors {
		head = focusStyle.Render("Majors  ")
	}
	lines := []string{head + checkedStyle.Render(summary), m.majorInput.View()}

	start := 0
	if m.majorCursor >= majorListHeight {
		start = m.majorCursor - majorListHeight + 1
	}
	for i := start; i < len(m.majorHits) && i < start+majorListHeight; i++ {
		major := m.majors[m.majorHits[i]]
		box := "[ ] "
		if slices.Contains(selected, major) {
			box = "[x] "
		}
		line := box + catalog.MajorDisplay(major)
		if m.focus == fieldMajors && i == m.majorCursor {
			line = hoverStyle.Render(line)
		} else {
			line = mutedStyle.Render(line)
		}
		lines = append(lines, "  "+line)
	}
	for len(lines) < majorListHeight+2 {
		lines = append(lines, "")
	}
	return lines
}

func newInput(prompt, placeholder string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.Placeholder = placeholder
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func newResultsTable() table.Model {
	t := table.New(
		table.WithColumns(resultColumns(96)),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func resultColumns(width int) []table.Column {
	fixed := []table.Column{
		{Title: "Code", Width: 10},
		{Title: "Gr", Width: 3},
		{Title: "Title", Width: 0},
		{Title: "Cr", Width: 4},
		{Title: "Major", Width: 16},
		{Title: "Schedule", Width: 22},
	}
	used := 0
	for _, c := range fixed {
		used += c.Width + 1
	}
	fixed[2].Width = max(12, width-used)
	return fixed
}

func buildRows(entries []model.CatalogEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{
			e.ID,
			strconv.Itoa(e.Grade),
			e.Title,
			e.Credits,
			catalog.MajorTag(e.Major),
			strings.ReplaceAll(e.Schedule, "<p>", " "),
		})
	}
	return rows
}

type majorSource []string

func (s majorSource) String(i int) string { return catalog.MajorDisplay(s[i]) }
func (s majorSource) Len() int            { return len(s) }

// matchMajors returns indexes into majors matching query, best first. An empty
// query keeps catalog order.
func matchMajors(majors []string, query string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]int, len(majors))
		for i := range out {
			out[i] = i
		}
		return out
	}
	matches := fuzzy.FindFrom(query, majorSource(majors))
	out := make([]int, len(matches))
	for i, match := range matches {
		out[i] = match.Index
	}
	return out
}

func creditIndex(credits *int) int {
	if credits == nil {
		return 0
	}
	if i := slices.Index(CreditChoices, *credits); i >= 0 {
		return i
	}
	return 0
}

func moveCursor(msg tea.KeyMsg, cur *int, n int) bool {
	switch msg.String() {
	case "left", "h":
		*cur = wrap(*cur-1, n)
		return true
	case "right", "l":
		*cur = wrap(*cur+1, n)
		return true
	}
	return false
}

func isToggle(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeySpace || msg.Type == tea.KeyEnter || msg.String() == " "
}

func wrap(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}
