package tui

import (
	"strings"
	"testing"

	"github.com/verte-zerg/tuibeat/internal/rhythm"
)

func TestRenderFooterFormats(t *testing.T) {
	m := NewModel(Options{Params: rhythm.DefaultParams(rhythm.VariantSingle)})
	m.hasLast = true
	m.lastBest = 42
	m.allBest = 97
	m.allGames = 12
	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Last 42", "Best 97 over 12 games", "quit"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestRenderFooterWithoutHistory(t *testing.T) {
	m := NewModel(Options{Params: rhythm.DefaultParams(rhythm.VariantSingle)})
	out := m.renderFooter()
	if strings.Contains(out, "Last") || strings.Contains(out, "Best") {
		t.Fatalf("expected no history segments, got %s", out)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("level has no notes to play", 10)
	want := []string{"level has", "no notes", "to play"}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %q", len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
	long := wrapText("abcdefghijkl", 5)
	if len(long) != 3 || long[0] != "abcde" || long[2] != "kl" {
		t.Fatalf("unexpected split of long word: %q", long)
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
