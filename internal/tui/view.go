package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/tuibeat/internal/rhythm"
)

const (
	laneWidth      = 9
	minTrackHeight = 6
	defaultHeight  = 24
)

var (
	laneAStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	laneBStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4D8BFF")).Bold(true)
	neutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	railStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
	hitLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	hitZoneStyle = lipgloss.NewStyle().Background(lipgloss.Color("#2A2418"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

var resultBoxStyle = lipgloss.NewStyle().
	Padding(1, 3).
	Border(lipgloss.RoundedBorder(), true).
	BorderForeground(lipgloss.Color("#C89A3A"))

// Fade ramps from invisible to full color, indexed by opacity.
var (
	hitRamp   = []string{"#262626", "#2F5A2F", "#3F8A3F", "#5CC45C", "#9CFF9C"}
	missRamp  = []string{"#262626", "#5A2626", "#8A3333", "#C44444", "#FF4D4F"}
	wrongRamp = []string{"#262626", "#5A4526", "#8A6A33", "#C49444", "#FFB84D"}
)

var arrowGlyphs = map[rhythm.Direction]string{
	rhythm.DirUp:    "↑",
	rhythm.DirDown:  "↓",
	rhythm.DirLeft:  "←",
	rhythm.DirRight: "→",
	rhythm.DirAny:   "◆",
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.result != nil {
		return m.place(m.renderResult())
	}
	if !m.session.Running() {
		return ""
	}
	parts := []string{
		m.renderHeader(),
		m.renderFeedback(),
		m.renderTrack(m.trackHeight()),
	}
	if m.opts.Params.Variant == rhythm.VariantMulti {
		parts = append(parts, m.renderHands())
	}
	content := lipgloss.JoinVertical(lipgloss.Center, parts...)
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	bodyHeight := m.height - 2
	if bodyHeight < 1 {
		return content
	}
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLines := lipgloss.Place(m.width, 2, lipgloss.Center, lipgloss.Bottom, footer)
	return body + "\n" + footerLines
}

func (m *Model) place(content string) string {
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) trackHeight() int {
	h := m.height
	if h == 0 {
		h = defaultHeight
	}
	// Header, feedback, hands and two footer lines.
	h -= 6
	if h < minTrackHeight {
		h = minTrackHeight
	}
	return h
}

func (m *Model) laneCount() int {
	if m.opts.Params.Variant == rhythm.VariantMulti {
		return 2
	}
	return 1
}

func (m *Model) renderHeader() string {
	st := m.session.Stats()
	left := fmt.Sprintf("Score %d  Combo %d  Max %d", st.Score, st.Combo, st.MaxCombo)
	var right string
	if m.session.Mode() == rhythm.ModeAuthored {
		right = fmt.Sprintf("%s %3.0f%%", m.levelName(), m.session.Progress()*100)
	} else {
		right = fmt.Sprintf("speed %.3f", m.session.Speed())
	}
	if m.session.Paused() {
		right += "  paused"
	}
	return headerStyle.Render(left) + "   " + mutedStyle.Render(right)
}

func (m *Model) levelName() string {
	if m.opts.Chart != nil && m.opts.Chart.Name != "" {
		return m.opts.Chart.Name
	}
	return "level"
}

func (m *Model) renderFeedback() string {
	width := laneWidth * m.laneCount()
	label, kind, opacity := m.feedback.Current(m.clock.Now())
	if label == "" {
		return strings.Repeat(" ", width)
	}
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(fadeColor(kind, opacity)))
	return renderCells(centerIn(newCell(label, style.Render), width))
}

func fadeColor(kind int, opacity float64) string {
	ramp := hitRamp
	switch kind {
	case feedbackMiss:
		ramp = missRamp
	case feedbackWrong:
		ramp = wrongRamp
	}
	idx := int(math.Round(opacity * float64(len(ramp)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(ramp) {
		idx = len(ramp) - 1
	}
	return ramp[idx]
}

// rowFor maps a travel-axis position to a track row; spawn is the top row and
// the pass line the bottom one.
func (m *Model) rowFor(z float64, rows int) int {
	p := m.opts.Params
	span := p.PassZ - p.SpawnZ
	if span <= 0 || rows <= 1 {
		return 0
	}
	row := int(math.Round((z - p.SpawnZ) / span * float64(rows-1)))
	if row < 0 {
		return 0
	}
	if row >= rows {
		return rows - 1
	}
	return row
}

func (m *Model) renderTrack(rows int) string {
	p := m.opts.Params
	lanes := m.laneCount()
	hitRow := m.rowFor(p.HitZ, rows)
	zoneTop := m.rowFor(p.HitZ-p.Tolerance, rows)
	zoneBottom := m.rowFor(p.HitZ+p.Tolerance, rows)

	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, lanes)
		rail := newCell("│", railStyle.Render)
		if r == hitRow {
			rail = newCell("─", hitLineStyle.Render)
		}
		for l := 0; l < lanes; l++ {
			grid[r][l] = rail
		}
	}

	for _, n := range m.session.Live() {
		if !n.Pending() {
			continue
		}
		row := m.rowFor(n.Z, rows)
		glyph := arrowGlyphs[n.Direction]
		switch {
		case lanes == 1:
			grid[row][0] = newCell(glyph, neutralStyle.Render)
		case n.Lane == rhythm.LaneA:
			grid[row][0] = newCell(glyph, laneAStyle.Render)
		case n.Lane == rhythm.LaneB:
			grid[row][1] = newCell(glyph, laneBStyle.Render)
		default:
			grid[row][0] = newCell(glyph, neutralStyle.Render)
			grid[row][1] = newCell(glyph, neutralStyle.Render)
		}
	}

	lines := make([]string, rows)
	for r, row := range grid {
		var b strings.Builder
		for _, c := range row {
			b.WriteString(renderCells(centerIn(c, laneWidth)))
		}
		line := b.String()
		if r >= zoneTop && r <= zoneBottom {
			line = hitZoneStyle.Render(line)
		}
		lines[r] = line
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderHands() string {
	a := newCell(m.hands[0].glyph(), laneAStyle.Render)
	b := newCell(m.hands[1].glyph(), laneBStyle.Render)
	return renderCells(centerIn(a, laneWidth)) + renderCells(centerIn(b, laneWidth))
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %d", m.lastBest))
	}
	if m.allGames > 0 {
		segments = append(segments, fmt.Sprintf("Best %d over %d games", m.allBest, m.allGames))
	}
	line := footerStyle.Render(strings.Join(segments, "  ·  "))
	return line + "\n" + m.help.View(m.keys)
}

func (m *Model) renderResult() string {
	sum := m.result
	st := sum.Stats
	rows := [][2]string{
		{"Score", fmt.Sprintf("%d", st.Score)},
		{"Hits", fmt.Sprintf("%d", st.Hits)},
		{"Misses", fmt.Sprintf("%d", st.Misses)},
		{"Wrong", fmt.Sprintf("%d", st.Wrong)},
		{"Max combo", fmt.Sprintf("%d", st.MaxCombo)},
		{"Accuracy", fmt.Sprintf("%.1f%%", st.Accuracy()*100)},
		{"Time", sum.Duration.Round(100 * time.Millisecond).String()},
	}
	labelWidth := 0
	for _, r := range rows {
		if w := runewidth.StringWidth(r[0]); w > labelWidth {
			labelWidth = w
		}
	}
	lines := []string{headerStyle.Render("Game over"), mutedStyle.Render(sum.Reason), ""}
	for _, r := range rows {
		lines = append(lines, runewidth.FillRight(r[0], labelWidth)+"  "+headerStyle.Render(r[1]))
	}
	if m.notice != "" {
		lines = append(lines, "")
		for _, l := range wrapText(m.notice, 30) {
			lines = append(lines, noticeStyle.Render(l))
		}
	}
	lines = append(lines, "", m.help.View(m.keys))
	return resultBoxStyle.Render(strings.Join(lines, "\n"))
}
