package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one table column. A positive max truncates longer cells
// with an ellipsis.
type column struct {
	title string
	right bool
	max   int
}

// formatTable lays rows out in columns separated by a single space. The header
// line is skipped when no column has a title.
func formatTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	cells := make([][]string, 0, len(rows)+1)
	if hasTitles(cols) {
		header := make([]string, len(cols))
		for i, c := range cols {
			header[i] = c.title
		}
		cells = append(cells, header)
	}
	for _, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			if i < len(row) {
				line[i] = clip(row[i], c.max)
			}
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(cols))
	for _, line := range cells {
		for i, cell := range line {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	lines := make([]string, len(cells))
	for n, line := range cells {
		var b strings.Builder
		for i, cell := range line {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(padCell(cell, widths[i], cols[i].right))
		}
		lines[n] = b.String()
	}
	return lines
}

func hasTitles(cols []column) bool {
	for _, c := range cols {
		if c.title != "" {
			return true
		}
	}
	return false
}

func clip(value string, limit int) string {
	if limit <= 0 || runewidth.StringWidth(value) <= limit {
		return value
	}
	return runewidth.Truncate(value, limit, "…")
}

func padCell(value string, width int, rightAlign bool) string {
	if rightAlign {
		return runewidth.FillLeft(value, width)
	}
	return runewidth.FillRight(value, width)
}
