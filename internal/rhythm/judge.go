package rhythm

import "time"

// Verdict is the outcome of judging one attempt or one stale note.
type Verdict uint8

const (
	VerdictIgnored Verdict = iota
	VerdictHit
	VerdictWrongDirection
	VerdictMiss
)

func (v Verdict) String() string {
	switch v {
	case VerdictHit:
		return "hit"
	case VerdictWrongDirection:
		return "wrong-direction"
	case VerdictMiss:
		return "miss"
	default:
		return "ignored"
	}
}

// Label is the feedback text shown for the verdict.
func (v Verdict) Label() string {
	switch v {
	case VerdictHit:
		return "Perfect!"
	case VerdictMiss, VerdictWrongDirection:
		return "Miss!"
	default:
		return ""
	}
}

// HitAttempt is one input event.
type HitAttempt struct {
	At        time.Duration
	Direction Direction
	// Lane is the hand that attempted; LaneNone matches every lane.
	Lane Lane
	// Motion, when set, is the hand displacement judged against the note's
	// direction instead of Direction.
	Motion *Vec2
}

func directionMatches(n *Note, a HitAttempt, threshold float64) bool {
	if n.Direction == DirAny {
		return true
	}
	if a.Motion != nil {
		return a.Motion.Normalize().Dot(n.Direction.Unit()) > threshold
	}
	return a.Direction == n.Direction
}

type timing uint8

const (
	timingOK timing = iota
	timingEarly
	timingLate
)

func timingOf(n *Note, at, grace time.Duration) timing {
	if !n.authored {
		return timingOK
	}
	switch {
	case at < n.WindowStart-grace:
		return timingEarly
	case at > n.WindowEnd+grace:
		return timingLate
	}
	return timingOK
}

// judge picks the note an attempt lands on among eligible candidates, in order.
// It does not mutate anything.
func judge(candidates []*Note, a HitAttempt, p Params) (*Note, Verdict) {
	var late, wrong *Note
	for _, n := range candidates {
		if !directionMatches(n, a, p.Threshold) {
			if wrong == nil {
				wrong = n
			}
			continue
		}
		switch timingOf(n, a.At, p.Grace) {
		case timingOK:
			return n, VerdictHit
		case timingLate:
			if late == nil {
				late = n
			}
		}
	}
	if late != nil {
		return late, VerdictMiss
	}
	if wrong != nil {
		return wrong, VerdictWrongDirection
	}
	return nil, VerdictIgnored
}
