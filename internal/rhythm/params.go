package rhythm

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how notes enter the timeline.
type Mode uint8

const (
	ModeProcedural Mode = iota
	ModeAuthored
)

func (m Mode) String() string {
	if m == ModeAuthored {
		return "authored"
	}
	return "procedural"
}

// Variant selects the input model.
type Variant uint8

const (
	// VariantSingle judges one note at a time against key presses.
	VariantSingle Variant = iota
	// VariantMulti streams two-lane notes judged by swing direction in a hit zone.
	VariantMulti
)

func (v Variant) String() string {
	if v == VariantMulti {
		return "multi"
	}
	return "single"
}

// ParseVariant parses "single" or "multi".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "":
		return VariantSingle, nil
	case "multi":
		return VariantMulti, nil
	}
	return VariantSingle, fmt.Errorf("unknown variant %q (want single or multi)", s)
}

const (
	DefaultBaseSpeed      = 0.05
	DefaultSpeedIncrement = 0.00005
	DefaultTickPeriod     = time.Second / 60
	DefaultGrace          = 100 * time.Millisecond
	DefaultComboTimeout   = 1000 * time.Millisecond
	DefaultThreshold      = 0.5

	MinSpawnInterval  = 300 * time.Millisecond
	BaseSpawnInterval = 1000 * time.Millisecond
	// spawnIntervalScale is milliseconds of interval removed per unit of speed gained.
	spawnIntervalScale = 10000
)

// Params tunes a session. The zero value is not usable; start from DefaultParams.
type Params struct {
	Variant Variant

	BaseSpeed      float64
	SpeedIncrement float64
	TickPeriod     time.Duration

	Grace        time.Duration
	ComboTimeout time.Duration
	Threshold    float64

	SpawnZ    float64
	HitZ      float64
	Tolerance float64
	PassZ     float64
}

// DefaultParams returns the tuning for a variant.
func DefaultParams(v Variant) Params {
	p := Params{
		Variant:        v,
		BaseSpeed:      DefaultBaseSpeed,
		SpeedIncrement: DefaultSpeedIncrement,
		TickPeriod:     DefaultTickPeriod,
		Grace:          DefaultGrace,
		ComboTimeout:   DefaultComboTimeout,
		Threshold:      DefaultThreshold,
		PassZ:          6,
	}
	if v == VariantMulti {
		p.SpawnZ = -20
		p.HitZ = -0.5
		p.Tolerance = 0.5
		return p
	}
	p.SpawnZ = -10
	p.HitZ = 5
	p.Tolerance = 1
	return p
}
