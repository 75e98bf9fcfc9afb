package rhythm

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Lane is the color/hand a note belongs to. LaneNone means any hand may take it.
type Lane uint8

const (
	LaneNone Lane = iota
	LaneA
	LaneB
)

func (l Lane) String() string {
	switch l {
	case LaneA:
		return "a"
	case LaneB:
		return "b"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Lane) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Lane) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "none":
		*l = LaneNone
	case "a", "red":
		*l = LaneA
	case "b", "blue":
		*l = LaneB
	default:
		return fmt.Errorf("unknown lane %q", string(text))
	}
	return nil
}

// matches reports whether a hand on lane o may take a note on lane l.
func (l Lane) matches(o Lane) bool {
	return l == LaneNone || o == LaneNone || l == o
}

// Direction is the swing or key a note asks for.
type Direction uint8

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
	DirAny
)

// Directions lists the fixed directions in display order.
var Directions = []Direction{DirUp, DirDown, DirLeft, DirRight}

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	case DirAny:
		return "any"
	default:
		return fmt.Sprintf("direction(%d)", uint8(d))
	}
}

// ParseDirection parses the level file spelling of a direction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	case "any":
		return DirAny, nil
	}
	return DirUp, fmt.Errorf("unknown direction %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if d > DirAny {
		return nil, fmt.Errorf("invalid direction %d", uint8(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Unit returns the canonical unit vector. DirAny has none.
func (d Direction) Unit() Vec2 {
	switch d {
	case DirUp:
		return Vec2{X: 0, Y: 1}
	case DirDown:
		return Vec2{X: 0, Y: -1}
	case DirLeft:
		return Vec2{X: -1, Y: 0}
	case DirRight:
		return Vec2{X: 1, Y: 0}
	default:
		return Vec2{}
	}
}

// Vec2 is a displacement on the swing plane.
type Vec2 struct {
	X, Y float64
}

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// Len returns the euclidean length.
func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector along v. The zero vector stays zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Dot returns the dot product.
func (v Vec2) Dot(o Vec2) float64 {
	return v.X*o.X + v.Y*o.Y
}

// State is the lifecycle of a note.
type State uint8

const (
	StatePending State = iota
	StateHit
	StateMissed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateHit:
		return "hit"
	case StateMissed:
		return "missed"
	default:
		return "unknown"
	}
}

// Note is one judged object on the timeline.
//
// A note leaves StatePending exactly once. A wrong-direction hit consumes the
// note: it ends in StateHit with Verdict set to VerdictWrongDirection.
type Note struct {
	ID          uint64
	Lane        Lane
	Direction   Direction
	SpawnTime   time.Duration
	WindowStart time.Duration
	WindowEnd   time.Duration
	// Z is the position along the travel axis, growing toward the player.
	Z       float64
	State   State
	Verdict Verdict

	authored bool
}

// Pending reports whether the note can still be judged.
func (n *Note) Pending() bool {
	return n.State == StatePending
}

// Authored reports whether the note came from a level chart.
func (n *Note) Authored() bool {
	return n.authored
}

func (n *Note) resolve(state State, verdict Verdict) bool {
	if n.State != StatePending {
		return false
	}
	n.State = state
	n.Verdict = verdict
	return true
}
