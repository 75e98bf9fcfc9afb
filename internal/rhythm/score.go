package rhythm

import "time"

// Stats is a snapshot of a Tracker.
type Stats struct {
	Score    int
	Combo    int
	MaxCombo int
	Hits     int
	Misses   int
	Wrong    int
}

// Judged returns the number of notes that received a verdict.
func (s Stats) Judged() int {
	return s.Hits + s.Misses + s.Wrong
}

// Accuracy returns hits over judged notes, 0 when nothing was judged.
func (s Stats) Accuracy() float64 {
	if s.Judged() == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Judged())
}

// Tracker reduces verdicts into score and combo.
type Tracker struct {
	stats   Stats
	lastHit time.Duration
	timeout time.Duration
}

// NewTracker returns a Tracker whose combo decays after timeout without a hit.
func NewTracker(timeout time.Duration) *Tracker {
	return &Tracker{timeout: timeout}
}

// Apply folds one verdict observed at game time at.
func (t *Tracker) Apply(v Verdict, at time.Duration) {
	switch v {
	case VerdictHit:
		t.stats.Score++
		t.stats.Hits++
		t.stats.Combo++
		if t.stats.Combo > t.stats.MaxCombo {
			t.stats.MaxCombo = t.stats.Combo
		}
		t.lastHit = at
	case VerdictMiss:
		t.stats.Misses++
		t.stats.Combo = 0
	case VerdictWrongDirection:
		t.stats.Wrong++
		t.stats.Combo = 0
	}
}

// Decay drops the combo when the last hit is older than the timeout.
// It reports whether the combo was reset.
func (t *Tracker) Decay(now time.Duration) bool {
	if t.stats.Combo > 0 && now-t.lastHit > t.timeout {
		t.stats.Combo = 0
		return true
	}
	return false
}

// Reset clears all counters.
func (t *Tracker) Reset() {
	t.stats = Stats{}
	t.lastHit = 0
}

// Stats returns the current counters.
func (t *Tracker) Stats() Stats {
	return t.stats
}

// LastHit returns the game time of the last hit.
func (t *Tracker) LastHit() time.Duration {
	return t.lastHit
}
