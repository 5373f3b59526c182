package tui

import (
	"hash/fnv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuitable/internal/model"
	"github.com/verte-zerg/tuitable/internal/schedule"
)

var gridDays = model.FilterDays

const (
	slotRows       = schedule.SlotCount
	labelWidth     = 12
	minCellWidth   = 6
	maxCellWidth   = 22
	defaultWidth   = 100
	continuationCh = "┃"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
)

var blockColors = []lipgloss.Color{"#7FB3D5", "#F5B041", "#82E0AA", "#F1948A", "#BB8FCE", "#76D7C4", "#F7DC6F"}

// cell is one rendered grid position before styling.
type cell struct {
	text  string
	block *model.ScheduleBlock
}

// layoutGrid places blocks into a slot-by-day matrix. A block's title goes in
// its first slot and the following slots show a continuation mark. When blocks
// overlap, the one added first wins.
func layoutGrid(blocks []model.ScheduleBlock, cellWidth int) [][]cell {
	grid := make([][]cell, slotRows)
	for i := range grid {
		grid[i] = make([]cell, len(gridDays))
	}
	col := make(map[model.Day]int, len(gridDays))
	for i, d := range gridDays {
		col[d] = i
	}
	for i := range blocks {
		b := &blocks[i]
		c, ok := col[b.Day]
		if !ok {
			continue
		}
		for j, s := range b.Range {
			if s < 1 || s > slotRows || grid[s-1][c].block != nil {
				continue
			}
			text := continuationCh
			if j == 0 {
				text = b.Lecture.Title
				if text == "" {
					text = b.Lecture.ID
				}
			} else if j == 1 && b.Room != "" {
				text = b.Room
			}
			grid[s-1][c] = cell{text: fitCell(text, cellWidth), block: b}
		}
	}
	return grid
}

func renderGrid(blocks []model.ScheduleBlock, dayIdx, slot, width int) string {
	cellWidth := cellWidthFor(width)
	grid := layoutGrid(blocks, cellWidth)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", labelWidth))
	for _, d := range gridDays {
		b.WriteByte(' ')
		b.WriteString(headerStyle.Render(fitCell(d.Label()+" "+d.String(), cellWidth)))
	}
	for row := 0; row < slotRows; row++ {
		b.WriteByte('\n')
		b.WriteString(labelStyle.Render(fitCell(schedule.SlotLabel(row+1), labelWidth)))
		for c := range gridDays {
			b.WriteByte(' ')
			b.WriteString(styleCell(grid[row][c], cellWidth, c == dayIdx && row+1 == slot))
		}
	}
	return b.String()
}

func styleCell(c cell, width int, selected bool) string {
	text := c.text
	style := emptyStyle
	if c.block == nil {
		text = fitCell("·", width)
	} else {
		style = lipgloss.NewStyle().Foreground(colorFor(c.block.Lecture.ID))
	}
	if selected {
		style = style.Reverse(true)
	}
	return style.Render(text)
}

func colorFor(id string) lipgloss.Color {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return blockColors[h.Sum32()%uint32(len(blockColors))]
}

func cellWidthFor(width int) int {
	if width <= 0 {
		width = defaultWidth
	}
	w := (width - labelWidth) / len(gridDays)
	w-- // column gap
	return clamp(w, minCellWidth, maxCellWidth)
}

// fitCell truncates or pads s to exactly width terminal columns.
func fitCell(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}
