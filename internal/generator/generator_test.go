package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/tuibeat/internal/rhythm"
)

func TestDirectionPool(t *testing.T) {
	g := NewSeeded(7)
	seen := map[rhythm.Direction]int{}
	for i := 0; i < 2000; i++ {
		seen[g.Direction(false)]++
	}
	assert.Len(t, seen, 4)
	assert.Zero(t, seen[rhythm.DirAny])

	seen = map[rhythm.Direction]int{}
	for i := 0; i < 2000; i++ {
		seen[g.Direction(true)]++
	}
	assert.Len(t, seen, 5)
	for d, n := range seen {
		assert.Greater(t, n, 250, "direction %s underrepresented", d)
	}
}

func TestLaneIsColored(t *testing.T) {
	g := NewSeeded(11)
	seen := map[rhythm.Lane]bool{}
	for i := 0; i < 200; i++ {
		seen[g.Lane()] = true
	}
	assert.Equal(t, map[rhythm.Lane]bool{rhythm.LaneA: true, rhythm.LaneB: true}, seen)
}

func TestSeededIsReproducible(t *testing.T) {
	a := NewSeeded(42).Steps(32, true, true)
	b := NewSeeded(42).Steps(32, true, true)
	require.Len(t, a, 32)
	assert.Equal(t, a, b)

	for _, step := range NewSeeded(3).Steps(16, false, false) {
		assert.Equal(t, rhythm.LaneNone, step.Lane)
		assert.NotEqual(t, rhythm.DirAny, step.Direction)
	}
}

func TestFocusWeakBiasesSelection(t *testing.T) {
	g := NewSeeded(5)
	g.FocusWeak(map[rhythm.Direction]struct{}{rhythm.DirLeft: {}}, 5)

	counts := map[rhythm.Direction]int{}
	for i := 0; i < 4000; i++ {
		counts[g.Direction(false)]++
	}
	// Left weighs 6 against 1 for each of the other three: about 2/3 of picks.
	assert.Greater(t, counts[rhythm.DirLeft], 2300)
	assert.Positive(t, counts[rhythm.DirUp])

	g.FocusWeak(nil, 5)
	counts = map[rhythm.Direction]int{}
	for i := 0; i < 4000; i++ {
		counts[g.Direction(false)]++
	}
	assert.Less(t, counts[rhythm.DirLeft], 1300)
}
