// Package stats contains session metrics and text reports.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/tuibeat/internal/model"
)

const (
	sparkChars          = " .:-=+*#%@"
	terminalWidthBackup = 80
	curveLabelWidth     = 10
	levelColumnWidth    = 24
)

// directionOrder fixes the row order of direction tables.
var directionOrder = map[string]int{"up": 0, "down": 1, "left": 2, "right": 3, "any": 4}

// SessionMetrics computes accuracy and hits per minute for a session.
func SessionMetrics(s model.SessionAggregate) (accuracy, hpm float64) {
	judged := s.Hits + s.Misses + s.Wrong
	if judged > 0 {
		accuracy = float64(s.Hits) / float64(judged)
	}
	if s.DurationMs > 0 {
		hpm = float64(s.Hits) / (float64(s.DurationMs) / 60000.0)
	}
	return accuracy, hpm
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// Tail returns at most the last n values.
func Tail(values []float64, n int) []float64 {
	if n <= 0 || len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

// TerminalWidth returns the width of stdout, or a fallback when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

// Summary holds the headline numbers over a set of sessions.
type Summary struct {
	Sessions    int
	BestScore   int
	AvgScore    float64
	AvgAccuracy float64
	AvgHPM      float64
	BestCombo   int
	PlayTime    time.Duration
}

// Summarize folds sessions into a Summary.
func Summarize(sessions []model.SessionAggregate) Summary {
	var sum Summary
	if len(sessions) == 0 {
		return sum
	}
	var totalScore, totalAcc, totalHPM float64
	for _, s := range sessions {
		acc, hpm := SessionMetrics(s)
		totalScore += float64(s.Score)
		totalAcc += acc
		totalHPM += hpm
		if s.Score > sum.BestScore {
			sum.BestScore = s.Score
		}
		if s.MaxCombo > sum.BestCombo {
			sum.BestCombo = s.MaxCombo
		}
		sum.PlayTime += time.Duration(s.DurationMs) * time.Millisecond
	}
	count := float64(len(sessions))
	sum.Sessions = len(sessions)
	sum.AvgScore = totalScore / count
	sum.AvgAccuracy = totalAcc / count
	sum.AvgHPM = totalHPM / count
	return sum
}

// RenderSummary prints a summary table for sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	sum := Summarize(sessions)
	if _, err := fmt.Fprintln(w, "Summary"); err != nil {
		return err
	}
	rows := [][]string{
		{"Sessions", fmt.Sprintf("%d", sum.Sessions)},
		{"Best Score", fmt.Sprintf("%d", sum.BestScore)},
		{"Avg Score", fmt.Sprintf("%.2f", sum.AvgScore)},
		{"Avg Accuracy", fmt.Sprintf("%.2f%%", sum.AvgAccuracy*100)},
		{"Avg Hits/min", fmt.Sprintf("%.2f", sum.AvgHPM)},
		{"Best Combo", fmt.Sprintf("%d", sum.BestCombo)},
		{"Play Time", sum.PlayTime.Round(time.Second).String()},
	}
	for _, line := range formatTable([]column{{}, {right: true}}, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// CurveLines renders score and accuracy trends as labelled sparklines that fit
// within width cells.
func CurveLines(sessions []model.SessionAggregate, window, width int) []string {
	if len(sessions) == 0 {
		return nil
	}
	scores := make([]float64, len(sessions))
	accs := make([]float64, len(sessions))
	for i, s := range sessions {
		acc, _ := SessionMetrics(s)
		scores[i] = float64(s.Score)
		accs[i] = acc * 100
	}
	scores = MovingAverage(scores, window)
	accs = MovingAverage(accs, window)

	span := width - curveLabelWidth - 12
	if span < 8 {
		span = 8
	}
	scores = Tail(scores, span)
	accs = Tail(accs, span)
	return []string{
		padCell("Score", curveLabelWidth, false) + Sparkline(scores) + fmt.Sprintf(" %.1f", scores[len(scores)-1]),
		padCell("Accuracy", curveLabelWidth, false) + Sparkline(accs) + fmt.Sprintf(" %.1f%%", accs[len(accs)-1]),
	}
}

// RenderCurves prints score and accuracy trends.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, width int) error {
	lines := CurveLines(sessions, window, width)
	if len(lines) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Trends (moving average, window %d)\n", window); err != nil {
		return err
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// DirectionRow is one row of the per-direction table.
type DirectionRow struct {
	Direction string
	Accuracy  float64
	Latency   float64
	Hits      int
	Misses    int
	Wrong     int
}

// DirectionRows converts aggregates into table rows, lowest accuracy first.
func DirectionRows(aggs []model.DirectionAggregate) []DirectionRow {
	rows := make([]DirectionRow, 0, len(aggs))
	for _, agg := range aggs {
		lat := 0.0
		if agg.LatencyCount > 0 {
			lat = float64(agg.LatencySumMs) / float64(agg.LatencyCount)
		}
		rows = append(rows, DirectionRow{
			Direction: agg.Direction,
			Accuracy:  accuracy(agg),
			Latency:   lat,
			Hits:      agg.Hits,
			Misses:    agg.Misses,
			Wrong:     agg.Wrong,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Accuracy == rows[j].Accuracy {
			return directionOrder[rows[i].Direction] < directionOrder[rows[j].Direction]
		}
		return rows[i].Accuracy < rows[j].Accuracy
	})
	return rows
}

// RenderDirectionTable prints per-direction aggregates.
func RenderDirectionTable(w io.Writer, aggs []model.DirectionAggregate) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No direction stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Direction (Windowed)"); err != nil {
		return err
	}

	cols := []column{
		{title: "Direction"},
		{title: "Accuracy", right: true},
		{title: "Avg Reaction (ms)", right: true},
		{title: "Hits", right: true},
		{title: "Misses", right: true},
		{title: "Wrong", right: true},
	}
	tableRows := make([][]string, 0, len(aggs))
	for _, r := range DirectionRows(aggs) {
		tableRows = append(tableRows, []string{
			r.Direction,
			fmt.Sprintf("%.2f%%", r.Accuracy*100),
			fmt.Sprintf("%.1f", r.Latency),
			fmt.Sprintf("%d", r.Hits),
			fmt.Sprintf("%d", r.Misses),
			fmt.Sprintf("%d", r.Wrong),
		})
	}
	for _, line := range formatTable(cols, tableRows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderSessionTable prints the most recent sessions, newest last.
func RenderSessionTable(w io.Writer, sessions []model.SessionAggregate, n int) error {
	if len(sessions) == 0 {
		return nil
	}
	if n > 0 && len(sessions) > n {
		sessions = sessions[len(sessions)-n:]
	}
	if _, err := fmt.Fprintln(w, "Recent Sessions"); err != nil {
		return err
	}
	cols := []column{
		{title: "Ended"},
		{title: "Mode"},
		{title: "Variant"},
		{title: "Level", max: levelColumnWidth},
		{title: "Score", right: true},
		{title: "Accuracy", right: true},
		{title: "Combo", right: true},
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		acc, _ := SessionMetrics(s)
		level := s.Level
		if level == "" {
			level = "-"
		}
		rows = append(rows, []string{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.Mode,
			s.Variant,
			level,
			fmt.Sprintf("%d", s.Score),
			fmt.Sprintf("%.2f%%", acc*100),
			fmt.Sprintf("%d", s.MaxCombo),
		})
	}
	for _, line := range formatTable(cols, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
