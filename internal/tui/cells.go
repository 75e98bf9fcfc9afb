package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// cell is one styled glyph with its display width.
type cell struct {
	s     string
	width int
}

func newCell(glyph string, render func(...string) string) cell {
	return cell{s: render(glyph), width: runewidth.StringWidth(glyph)}
}

func blankCells(n int) []cell {
	out := make([]cell, n)
	for i := range out {
		out[i] = cell{s: " ", width: 1}
	}
	return out
}

func renderCells(cells []cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(c.s)
	}
	return b.String()
}

// centerIn places c in the middle of a blank field of width cells.
func centerIn(c cell, width int) []cell {
	if c.width >= width {
		return []cell{c}
	}
	left := (width - c.width) / 2
	right := width - c.width - left
	out := blankCells(left)
	out = append(out, c)
	return append(out, blankCells(right)...)
}

// wrapText breaks plain text on spaces so no line exceeds width cells. Words
// longer than width are split.
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}
	var lines []string
	var line strings.Builder
	lineWidth := 0
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		lineWidth = 0
	}
	for _, word := range strings.Fields(text) {
		w := runewidth.StringWidth(word)
		for w > width {
			if lineWidth > 0 {
				flush()
			}
			head := runewidth.Truncate(word, width, "")
			lines = append(lines, head)
			word = word[len(head):]
			w = runewidth.StringWidth(word)
		}
		if w == 0 {
			continue
		}
		if lineWidth > 0 && lineWidth+1+w > width {
			flush()
		}
		if lineWidth > 0 {
			line.WriteByte(' ')
			lineWidth++
		}
		line.WriteString(word)
		lineWidth += w
	}
	if lineWidth > 0 {
		flush()
	}
	return lines
}
