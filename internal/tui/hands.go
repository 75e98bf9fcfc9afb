package tui

import (
	"math"

	"github.com/verte-zerg/tuibeat/internal/rhythm"
)

// handRecovery is the share of a hand's offset kept after each frame as it
// drifts back to rest.
const handRecovery = 0.8

// hand tracks one saber position on the swing plane. A key press moves the hand
// to the edge in that direction; the displacement is the swing.
type hand struct {
	pos rhythm.Vec2
}

func (h *hand) swing(d rhythm.Direction) rhythm.Vec2 {
	target := d.Unit()
	motion := target.Sub(h.pos)
	h.pos = target
	return motion
}

func (h *hand) recover() {
	h.pos = rhythm.Vec2{X: h.pos.X * handRecovery, Y: h.pos.Y * handRecovery}
	if h.pos.Len() < 0.05 {
		h.pos = rhythm.Vec2{}
	}
}

// glyph shows where the hand points.
func (h hand) glyph() string {
	if h.pos.Len() < 0.3 {
		return "●"
	}
	if math.Abs(h.pos.X) >= math.Abs(h.pos.Y) {
		if h.pos.X > 0 {
			return "▶"
		}
		return "◀"
	}
	if h.pos.Y > 0 {
		return "▲"
	}
	return "▼"
}
