package report

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/tuitable/internal/catalog"
	"github.com/verte-zerg/tuitable/internal/model"
	"github.com/verte-zerg/tuitable/internal/schedule"
	"github.com/verte-zerg/tuitable/internal/store"
)

const (
	terminalWidthBackup = 100
	minTitleWidth       = 12
	// id, grade, credits, major tag, schedule and the separators between them.
	fixedResultWidth = 60
)

// TerminalWidth returns the width of stdout, or a fallback when it is not a
// terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// TitleWidthFor computes how many columns the title column may use.
func TitleWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = terminalWidthBackup
	}
	w := totalWidth - fixedResultWidth
	if w < minTitleWidth {
		w = minTitleWidth
	}
	return w
}

// RenderResults prints one page window of search results with a footer.
func RenderResults(w io.Writer, visible []model.CatalogEntry, total, page, lastPage, totalWidth int) error {
	titleWidth := TitleWidthFor(totalWidth)
	headers := []string{"ID", "Title", "Grade", "Credits", "Major", "Schedule"}
	rows := make([][]string, 0, len(visible))
	for _, e := range visible {
		rows = append(rows, []string{
			e.ID,
			Truncate(e.Title, titleWidth),
			strconv.Itoa(e.Grade),
			e.Credits,
			Truncate(catalog.MajorTag(e.Major), 16),
			Truncate(strings.ReplaceAll(e.Schedule, "<p>", " "), 24),
		})
	}
	if err := writeLines(w, formatTable(headers, rows, map[int]bool{2: true, 3: true})); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d of %d results (page %d/%d)\n", len(visible), total, page, max(lastPage, 1))
	return err
}

// RenderMajors prints the distinct majors, numbered in catalog order.
func RenderMajors(w io.Writer, majors []string) error {
	rows := make([][]string, 0, len(majors))
	for i, m := range majors {
		rows = append(rows, []string{strconv.Itoa(i + 1), catalog.MajorDisplay(m), catalog.MajorTag(m)})
	}
	return writeLines(w, formatTable([]string{"#", "Major", "Tag"}, rows, map[int]bool{0: true}))
}

// RenderBlocks prints parsed schedule blocks with their slot times.
func RenderBlocks(w io.Writer, blocks []model.ScheduleBlock) error {
	if len(blocks) == 0 {
		_, err := fmt.Fprintln(w, "no schedule blocks")
		return err
	}
	rows := make([][]string, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, []string{
			b.Day.Label() + " " + b.Day.String(),
			joinInts(b.Range),
			blockTime(b),
			b.Room,
		})
	}
	return writeLines(w, formatTable([]string{"Day", "Slots", "Time", "Room"}, rows, nil))
}

// RenderCache prints the cached catalog collections.
func RenderCache(w io.Writer, infos []store.CollectionInfo) error {
	if len(infos) == 0 {
		_, err := fmt.Fprintln(w, "catalog cache is empty")
		return err
	}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			info.FetchedAt.Local().Format("2006-01-02 15:04"),
			strconv.Itoa(info.RecordCount),
			formatBytes(info.SizeBytes),
		})
	}
	return writeLines(w, formatTable([]string{"Collection", "Fetched", "Records", "Size"}, rows, map[int]bool{2: true, 3: true}))
}

func blockTime(b model.ScheduleBlock) string {
	if len(b.Range) == 0 {
		return ""
	}
	first := schedule.SlotLabel(b.Range[0])
	last := schedule.SlotLabel(b.Range[len(b.Range)-1])
	if first == "" || last == "" {
		return ""
	}
	start, _, _ := strings.Cut(first, "~")
	_, end, _ := strings.Cut(last, "~")
	return start + "~" + end
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
