package rhythm

import (
	"math"
	"time"
)

// SpawnInterval returns the procedural spawn period for the current speed:
// max(300ms, 1000ms - (speed-base)*10000ms), rounded to the millisecond.
func SpawnInterval(speed, baseSpeed float64) time.Duration {
	ms := float64(BaseSpawnInterval/time.Millisecond) - (speed-baseSpeed)*spawnIntervalScale
	d := time.Duration(math.Round(ms)) * time.Millisecond
	if d < MinSpawnInterval {
		return MinSpawnInterval
	}
	return d
}

// Step is one authored note.
type Step struct {
	Direction Direction
	Lane      Lane
}

// Chart is a level ready to be replayed.
type Chart struct {
	Name         string
	NoteDuration time.Duration
	Gap          time.Duration
	Steps        []Step
}

// Arrival returns when step i reaches the hit plane. The first step arrives at zero.
func (c Chart) Arrival(i int) time.Duration {
	return time.Duration(i) * c.Gap
}

// Window returns the hit window of step i.
func (c Chart) Window(i int) (start, end time.Duration) {
	arrival := c.Arrival(i)
	return arrival - c.NoteDuration, arrival
}

// Length returns the arrival time of the last step.
func (c Chart) Length() time.Duration {
	if len(c.Steps) == 0 {
		return 0
	}
	return c.Arrival(len(c.Steps) - 1)
}

// Picker chooses random note attributes for procedural play.
type Picker interface {
	Direction(allowAny bool) Direction
	Lane() Lane
}

type authoredCursor struct {
	chart Chart
	next  int
}

// due returns the indices of steps whose spawn time has come.
func (a *authoredCursor) due(now time.Duration) []int {
	var out []int
	for a.next < len(a.chart.Steps) {
		start, _ := a.chart.Window(a.next)
		if start > now {
			break
		}
		out = append(out, a.next)
		a.next++
	}
	return out
}

func (a *authoredCursor) done() bool {
	return a.next >= len(a.chart.Steps)
}
