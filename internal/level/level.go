// Package level reads, validates, and edits authored level descriptions.
package level

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/tuibeat/internal/rhythm"
)

const (
	DefaultBPM             = 120
	DefaultNoteDuration    = 1000
	DefaultGapBetweenNotes = 500
)

// ErrInvalid marks level data that cannot be played.
var ErrInvalid = errors.New("invalid level")

// NoteSpec is one authored note.
type NoteSpec struct {
	Direction rhythm.Direction `json:"direction"`
	Lane      rhythm.Lane      `json:"lane,omitempty"`
}

// Spec is the flat JSON level description. Durations are in milliseconds.
type Spec struct {
	BPM             float64    `json:"bpm"`
	NoteDuration    float64    `json:"noteDuration"`
	GapBetweenNotes float64    `json:"gapBetweenNotes"`
	Notes           []NoteSpec `json:"notes"`
}

// New returns an empty level with default timing.
func New() Spec {
	return Spec{
		BPM:             DefaultBPM,
		NoteDuration:    DefaultNoteDuration,
		GapBetweenNotes: DefaultGapBetweenNotes,
		Notes:           []NoteSpec{},
	}
}

// Parse decodes and validates level JSON. Timing fields that are absent take
// their defaults.
func Parse(data []byte) (Spec, error) {
	var raw struct {
		BPM             *float64   `json:"bpm"`
		NoteDuration    *float64   `json:"noteDuration"`
		GapBetweenNotes *float64   `json:"gapBetweenNotes"`
		Notes           []NoteSpec `json:"notes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Spec{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	spec := New()
	if raw.BPM != nil {
		spec.BPM = *raw.BPM
	}
	if raw.NoteDuration != nil {
		spec.NoteDuration = *raw.NoteDuration
	}
	if raw.GapBetweenNotes != nil {
		spec.GapBetweenNotes = *raw.GapBetweenNotes
	}
	if raw.Notes != nil {
		spec.Notes = raw.Notes
	}
	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// Load reads a level JSON file.
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("failed to read level: %w", err)
	}
	spec, err := Parse(data)
	if err != nil {
		return Spec{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return spec, nil
}

// Validate checks timing values. An empty note list is valid; playing it ends
// the session at once.
func (s Spec) Validate() error {
	if !positive(s.BPM) {
		return fmt.Errorf("%w: bpm must be positive, got %v", ErrInvalid, s.BPM)
	}
	if !positive(s.NoteDuration) {
		return fmt.Errorf("%w: noteDuration must be positive, got %v", ErrInvalid, s.NoteDuration)
	}
	if !positive(s.GapBetweenNotes) {
		return fmt.Errorf("%w: gapBetweenNotes must be positive, got %v", ErrInvalid, s.GapBetweenNotes)
	}
	for i, n := range s.Notes {
		if n.Direction > rhythm.DirAny {
			return fmt.Errorf("%w: note %d has no direction", ErrInvalid, i)
		}
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Marshal encodes the level as indented JSON.
func (s Spec) Marshal() ([]byte, error) {
	if s.Notes == nil {
		s.Notes = []NoteSpec{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("failed to encode level: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the level to path.
func (s Spec) Save(path string) error {
	data, err := s.Marshal()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create level dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write level: %w", err)
	}
	return nil
}

// Chart converts the level into the schedule the rhythm core replays.
func (s Spec) Chart(name string) rhythm.Chart {
	steps := make([]rhythm.Step, len(s.Notes))
	for i, n := range s.Notes {
		steps[i] = rhythm.Step{Direction: n.Direction, Lane: n.Lane}
	}
	return rhythm.Chart{
		Name:         name,
		NoteDuration: millis(s.NoteDuration),
		Gap:          millis(s.GapBetweenNotes),
		Steps:        steps,
	}
}

// Name derives a display name from a level path.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func millis(v float64) time.Duration {
	return time.Duration(math.Round(v * float64(time.Millisecond)))
}

// ParseField parses a numeric editor field; anything non-numeric or
// non-positive yields def.
func ParseField(text string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || !positive(v) {
		return def
	}
	return v
}
