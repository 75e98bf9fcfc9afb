// Package anim runs value tweens addressed by handles. A handle carries the
// animator generation it was issued in; after Reset every older handle is
// dead and its completion callback never runs.
package anim

import (
	"time"
)

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// QuadOut decelerates toward the end.
func QuadOut(t float64) float64 { return t * (2 - t) }

// Tween interpolates From to To over Duration after waiting Delay.
type Tween struct {
	From     float64
	To       float64
	Delay    time.Duration
	Duration time.Duration
	Ease     Easing
}

// At returns the tween value elapsed after its start.
func (tw Tween) At(elapsed time.Duration) float64 {
	t := elapsed - tw.Delay
	if t <= 0 {
		return tw.From
	}
	if tw.Duration <= 0 || t >= tw.Duration {
		return tw.To
	}
	ease := tw.Ease
	if ease == nil {
		ease = Linear
	}
	p := ease(float64(t) / float64(tw.Duration))
	return tw.From + (tw.To-tw.From)*p
}

// Total returns delay plus duration.
func (tw Tween) Total() time.Duration {
	return tw.Delay + tw.Duration
}

// Handle names one running tween.
type Handle struct {
	id  uint64
	gen uint64
}

// IsZero reports whether h was never issued.
func (h Handle) IsZero() bool {
	return h.id == 0
}

type running struct {
	tween  Tween
	start  time.Time
	onDone func()
}

// Animator owns running tweens. It is not safe for concurrent use.
type Animator struct {
	gen    uint64
	nextID uint64
	active map[uint64]*running
}

// NewAnimator returns an empty Animator.
func NewAnimator() *Animator {
	return &Animator{gen: 1, active: make(map[uint64]*running)}
}

// Start begins tw at now. onDone, if set, runs from Update once the tween ends.
func (a *Animator) Start(tw Tween, now time.Time, onDone func()) Handle {
	a.nextID++
	a.active[a.nextID] = &running{tween: tw, start: now, onDone: onDone}
	return Handle{id: a.nextID, gen: a.gen}
}

// Alive reports whether h still names a running tween.
func (a *Animator) Alive(h Handle) bool {
	if h.gen != a.gen {
		return false
	}
	_, ok := a.active[h.id]
	return ok
}

// Value returns the current value for h. ok is false for dead handles.
func (a *Animator) Value(h Handle, now time.Time) (v float64, ok bool) {
	if !a.Alive(h) {
		return 0, false
	}
	r := a.active[h.id]
	return r.tween.At(now.Sub(r.start)), true
}

// Cancel stops h without running its callback.
func (a *Animator) Cancel(h Handle) {
	if h.gen != a.gen {
		return
	}
	delete(a.active, h.id)
}

// Update retires finished tweens and runs their callbacks. It returns the
// number of tweens still running.
func (a *Animator) Update(now time.Time) int {
	gen := a.gen
	for id, r := range a.active {
		if now.Sub(r.start) < r.tween.Total() {
			continue
		}
		delete(a.active, id)
		if r.onDone != nil {
			r.onDone()
		}
		// A callback may have reset the animator.
		if a.gen != gen {
			return len(a.active)
		}
	}
	return len(a.active)
}

// Reset kills every running tween and invalidates all issued handles.
func (a *Animator) Reset() {
	a.gen++
	a.active = make(map[uint64]*running)
}

// Len returns the number of running tweens.
func (a *Animator) Len() int {
	return len(a.active)
}
