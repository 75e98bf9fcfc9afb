package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

func TestTweenTimeline(t *testing.T) {
	tw := FeedbackTween()
	assert.Equal(t, 800*time.Millisecond, tw.Total())
	assert.Equal(t, 1.0, tw.At(0))
	assert.Equal(t, 1.0, tw.At(300*time.Millisecond))
	// Quadratic ease-out: halfway through the fade 75% of the change is done.
	assert.InDelta(t, 0.25, tw.At(550*time.Millisecond), 1e-9)
	assert.Equal(t, 0.0, tw.At(800*time.Millisecond))
	assert.Equal(t, 0.0, tw.At(5*time.Second))

	lin := Tween{From: 0, To: 10, Duration: time.Second}
	assert.InDelta(t, 2.5, lin.At(250*time.Millisecond), 1e-9)
	assert.Equal(t, 10.0, Tween{To: 10}.At(time.Nanosecond))
}

func TestAnimatorRunsCallbackOnce(t *testing.T) {
	a := NewAnimator()
	calls := 0
	h := a.Start(Tween{From: 0, To: 1, Duration: 100 * time.Millisecond}, t0, func() { calls++ })
	require.True(t, a.Alive(h))
	assert.True(t, Handle{}.IsZero())
	assert.False(t, h.IsZero())

	assert.Equal(t, 1, a.Update(t0.Add(50*time.Millisecond)))
	v, ok := a.Value(h, t0.Add(50*time.Millisecond))
	require.True(t, ok)
	assert.InDelta(t, 0.5, v, 1e-9)

	assert.Equal(t, 0, a.Update(t0.Add(100*time.Millisecond)))
	a.Update(t0.Add(time.Second))
	assert.Equal(t, 1, calls)
	assert.False(t, a.Alive(h))
}

func TestResetInvalidatesHandles(t *testing.T) {
	a := NewAnimator()
	fired := false
	h := a.Start(FeedbackTween(), t0, func() { fired = true })
	a.Reset()

	assert.False(t, a.Alive(h))
	_, ok := a.Value(h, t0)
	assert.False(t, ok)
	a.Update(t0.Add(time.Hour))
	assert.False(t, fired)

	// A fresh handle from the new generation never collides with the old one.
	h2 := a.Start(FeedbackTween(), t0, nil)
	assert.NotEqual(t, h, h2)
	a.Cancel(h)
	assert.True(t, a.Alive(h2))
	a.Cancel(h2)
	assert.Zero(t, a.Len())
}

func TestCallbackMayReset(t *testing.T) {
	a := NewAnimator()
	a.Start(Tween{Duration: time.Millisecond}, t0, a.Reset)
	a.Start(Tween{Duration: time.Millisecond}, t0, a.Reset)
	assert.Zero(t, a.Update(t0.Add(time.Second)))
}

func TestFeedbackSupersedes(t *testing.T) {
	a := NewAnimator()
	f := NewFeedback(a)

	label, _, _ := f.Current(t0)
	assert.Empty(t, label)

	f.Show("Perfect!", 1, t0)
	label, kind, op := f.Current(t0.Add(100 * time.Millisecond))
	assert.Equal(t, "Perfect!", label)
	assert.Equal(t, 1, kind)
	assert.Equal(t, 1.0, op)

	f.Show("Miss!", 2, t0.Add(700*time.Millisecond))
	// The first label's timeline would have ended here; the second must survive.
	a.Update(t0.Add(900 * time.Millisecond))
	label, kind, op = f.Current(t0.Add(900 * time.Millisecond))
	assert.Equal(t, "Miss!", label)
	assert.Equal(t, 2, kind)
	assert.Equal(t, 1.0, op)

	a.Update(t0.Add(1500 * time.Millisecond))
	label, _, _ = f.Current(t0.Add(1500 * time.Millisecond))
	assert.Empty(t, label)
	assert.Zero(t, a.Len())
}

func TestFeedbackClearedByReset(t *testing.T) {
	a := NewAnimator()
	f := NewFeedback(a)
	f.Show("Perfect!", 1, t0)
	a.Reset()
	label, _, op := f.Current(t0.Add(10 * time.Millisecond))
	assert.Empty(t, label)
	assert.Zero(t, op)
}
