package stats

import (
	"context"
	"fmt"

	"github.com/verte-zerg/tuibeat/internal/model"
	"github.com/verte-zerg/tuibeat/internal/store"
)

// Report is the filtered history behind both the text output and the stats UI.
type Report struct {
	Sessions []model.SessionAggregate
	Summary  Summary
	// Directions aggregates the last CurveWindow sessions only.
	Directions []model.DirectionAggregate
	// Weakest is the lowest-accuracy direction in the window, or "" without data.
	Weakest string
}

// BuildReport loads sessions matching cfg and aggregates their direction stats.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list sessions: %w", err)
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}

	window := sessions
	if cfg.CurveWindow > 0 && len(window) > cfg.CurveWindow {
		window = window[len(window)-cfg.CurveWindow:]
	}
	ids := make([]int64, len(window))
	for i, s := range window {
		ids[i] = s.SessionID
	}
	dirs, err := st.ListDirectionAggregatesForSessions(ctx, ids)
	if err != nil {
		return Report{}, fmt.Errorf("failed to aggregate directions: %w", err)
	}

	report := Report{
		Sessions:   sessions,
		Summary:    Summarize(sessions),
		Directions: dirs,
	}
	if rows := DirectionRows(dirs); len(rows) > 0 {
		report.Weakest = rows[0].Direction
	}
	return report, nil
}
