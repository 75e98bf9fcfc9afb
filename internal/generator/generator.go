// Package generator picks random note attributes for procedural play.
package generator

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/tuibeat/internal/rhythm"
)

// Generator produces randomized note directions and lanes.
type Generator struct {
	rnd     *rand.Rand
	weights map[rhythm.Direction]float64
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewSeeded(time.Now().UnixNano())
}

// NewSeeded returns a Generator with a fixed seed, for reproducible runs.
func NewSeeded(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// FocusWeak biases selection toward weak directions: each weak direction
// weighs 1+factor against 1 for the rest. An empty set restores uniform picks.
func (g *Generator) FocusWeak(weak map[rhythm.Direction]struct{}, factor float64) {
	if len(weak) == 0 || factor <= 0 {
		g.weights = nil
		return
	}
	g.weights = make(map[rhythm.Direction]float64, len(weak))
	for d := range weak {
		g.weights[d] = 1.0 + factor
	}
}

// Direction selects a direction. allowAny adds rhythm.DirAny to the pool.
func (g *Generator) Direction(allowAny bool) rhythm.Direction {
	pool := rhythm.Directions
	if allowAny {
		pool = append(pool[:len(pool):len(pool)], rhythm.DirAny)
	}
	if g.weights == nil {
		return pool[g.rnd.Intn(len(pool))]
	}

	weights := make([]float64, len(pool))
	total := 0.0
	for i, d := range pool {
		w := 1.0
		if v, ok := g.weights[d]; ok {
			w = v
		}
		weights[i] = w
		total += w
	}
	r := g.rnd.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			return pool[i]
		}
	}
	return pool[len(pool)-1]
}

// Lane selects one of the two colored lanes uniformly.
func (g *Generator) Lane() rhythm.Lane {
	if g.rnd.Intn(2) == 0 {
		return rhythm.LaneA
	}
	return rhythm.LaneB
}

// Steps builds count random steps, used to seed a new level in the editor.
func (g *Generator) Steps(count int, allowAny, lanes bool) []rhythm.Step {
	steps := make([]rhythm.Step, 0, count)
	for i := 0; i < count; i++ {
		step := rhythm.Step{Direction: g.Direction(allowAny)}
		if lanes {
			step.Lane = g.Lane()
		}
		steps = append(steps, step)
	}
	return steps
}

var _ rhythm.Picker = (*Generator)(nil)
