package rhythm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hitN(tr *Tracker, n int, at time.Duration) {
	for i := 0; i < n; i++ {
		tr.Apply(VerdictHit, at)
	}
}

func TestTrackerDecay(t *testing.T) {
	tr := NewTracker(DefaultComboTimeout)
	hitN(tr, 5, 0)
	require.Equal(t, 5, tr.Stats().Combo)

	assert.False(t, tr.Decay(999*time.Millisecond))
	assert.Equal(t, 5, tr.Stats().Combo)
	assert.False(t, tr.Decay(1000*time.Millisecond), "exactly the timeout keeps the combo")

	assert.True(t, tr.Decay(1001*time.Millisecond))
	assert.Equal(t, 0, tr.Stats().Combo)
	assert.Equal(t, 5, tr.Stats().Score)
	assert.Equal(t, 5, tr.Stats().MaxCombo)

	assert.False(t, tr.Decay(5*time.Second), "nothing left to decay")
}

func TestTrackerMissAndWrongResetCombo(t *testing.T) {
	tr := NewTracker(DefaultComboTimeout)
	hitN(tr, 3, 10*time.Millisecond)
	tr.Apply(VerdictMiss, 20*time.Millisecond)
	assert.Equal(t, 0, tr.Stats().Combo)
	assert.Equal(t, 3, tr.Stats().Score)

	hitN(tr, 2, 30*time.Millisecond)
	tr.Apply(VerdictWrongDirection, 40*time.Millisecond)
	tr.Apply(VerdictIgnored, 50*time.Millisecond)

	st := tr.Stats()
	assert.Equal(t, Stats{Score: 5, Combo: 0, MaxCombo: 3, Hits: 5, Misses: 1, Wrong: 1}, st)
	assert.Equal(t, 7, st.Judged())
	assert.Equal(t, 30*time.Millisecond, tr.LastHit())

	tr.Reset()
	assert.Equal(t, Stats{}, tr.Stats())
	assert.Zero(t, tr.Stats().Accuracy())
}

func TestDirectionText(t *testing.T) {
	for _, d := range append(Directions, DirAny) {
		text, err := d.MarshalText()
		require.NoError(t, err)
		var back Direction
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, d, back)
	}

	d, err := ParseDirection(" Left ")
	require.NoError(t, err)
	assert.Equal(t, DirLeft, d)

	_, err = ParseDirection("sideways")
	assert.Error(t, err)

	var lane Lane
	require.NoError(t, lane.UnmarshalText([]byte("red")))
	assert.Equal(t, LaneA, lane)
	assert.Error(t, lane.UnmarshalText([]byte("green")))
}

func TestNoteResolvesOnce(t *testing.T) {
	n := &Note{}
	require.True(t, n.resolve(StateHit, VerdictHit))
	assert.False(t, n.resolve(StateMissed, VerdictMiss))
	assert.Equal(t, StateHit, n.State)
	assert.Equal(t, VerdictHit, n.Verdict)
}

func TestGameClockElapsed(t *testing.T) {
	src := NewManualClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	gc := NewGameClock(src)
	gc.Reset()
	src.Advance(250 * time.Millisecond)
	assert.Equal(t, 250*time.Millisecond, gc.Elapsed())

	src.Set(gc.Origin().Add(-time.Second))
	assert.Equal(t, time.Duration(0), gc.Elapsed())

	gc.Reset()
	assert.Equal(t, time.Duration(0), gc.Elapsed())
}
