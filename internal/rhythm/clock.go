// Package rhythm implements the timing and judgment core shared by both game variants.
package rhythm

import (
	"sync"
	"time"
)

// Clock reports wall time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the system clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to. Tests drive sessions with it.
type ManualClock struct {
	mu sync.Mutex
	t  time.Time
}

// NewManualClock returns a ManualClock stopped at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{t: start}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// GameClock measures game time since the last Reset. Time spent paused does
// not count.
type GameClock struct {
	src      Clock
	origin   time.Time
	paused   bool
	pausedAt time.Time
	// held is the total paused time since origin, excluding an ongoing pause.
	held time.Duration
}

// NewGameClock wraps src; a nil src falls back to the system clock.
func NewGameClock(src Clock) *GameClock {
	if src == nil {
		src = SystemClock{}
	}
	return &GameClock{src: src, origin: src.Now()}
}

// Reset makes the current instant game time zero and clears any pause.
func (c *GameClock) Reset() {
	c.origin = c.src.Now()
	c.paused = false
	c.held = 0
}

// Origin returns the wall time of the last Reset.
func (c *GameClock) Origin() time.Time {
	return c.origin
}

// Pause freezes game time. Pausing twice is a no-op.
func (c *GameClock) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	c.pausedAt = c.src.Now()
}

// Resume lets game time run again from where Pause froze it.
func (c *GameClock) Resume() {
	if !c.paused {
		return
	}
	c.held += c.src.Now().Sub(c.pausedAt)
	c.paused = false
}

// Paused reports whether game time is frozen.
func (c *GameClock) Paused() bool {
	return c.paused
}

// Elapsed returns game time. It never goes below zero.
func (c *GameClock) Elapsed() time.Duration {
	now := c.src.Now()
	if c.paused {
		now = c.pausedAt
	}
	d := now.Sub(c.origin) - c.held
	if d < 0 {
		return 0
	}
	return d
}
