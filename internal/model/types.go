// Package model defines shared data structures.
package model

import "time"

// Config defines play settings.
type Config struct {
	Variant    string
	Level      string
	Tick       time.Duration
	Seed       int64
	Audio      bool
	FocusWeak  bool
	WeakTop    int
	WeakFactor float64
	WeakWindow int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Mode        string
	Variant     string
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionStats captures a finished game session.
type SessionStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Mode       string
	Variant    string
	Level      string
	Score      int
	Hits       int
	Misses     int
	Wrong      int
	MaxCombo   int
	Notes      int
	DurationMs int64
	Reason     string
}

// DirectionStats stores per-direction judgments for a session. Latency is the
// time from a note's spawn to the attempt that hit it.
type DirectionStats struct {
	Direction    string
	Hits         int
	Misses       int
	Wrong        int
	LatencySumMs int64
	LatencyCount int64
}

// DirectionAggregate aggregates direction stats across sessions.
type DirectionAggregate struct {
	Direction    string
	Hits         int
	Misses       int
	Wrong        int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	Mode       string
	Variant    string
	Level      string
	Score      int
	Hits       int
	Misses     int
	Wrong      int
	MaxCombo   int
	DurationMs int64
}
