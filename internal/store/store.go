// Package store handles SQLite persistence of finished game sessions.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/tuibeat/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// timeLayout is fixed width and always UTC so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps SQLite access for session data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			mode TEXT NOT NULL,
			variant TEXT NOT NULL,
			level TEXT NOT NULL,
			score INTEGER NOT NULL,
			hits INTEGER NOT NULL,
			misses INTEGER NOT NULL,
			wrong INTEGER NOT NULL,
			max_combo INTEGER NOT NULL,
			notes INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			reason TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS session_direction_stats (
			session_id INTEGER NOT NULL,
			direction TEXT NOT NULL,
			hits INTEGER NOT NULL,
			misses INTEGER NOT NULL,
			wrong INTEGER NOT NULL,
			latency_sum_ms INTEGER NOT NULL,
			latency_count INTEGER NOT NULL,
			PRIMARY KEY (session_id, direction)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_ended_at ON sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_session_direction_stats_direction ON session_direction_stats(direction);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished session and its per-direction stats.
func (s *Store) InsertSession(ctx context.Context, stats model.SessionStats, dirs []model.DirectionStats) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (started_at, ended_at, mode, variant, level, score, hits, misses, wrong, max_combo, notes, duration_ms, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.StartedAt.UTC().Format(timeLayout),
		stats.EndedAt.UTC().Format(timeLayout),
		stats.Mode,
		stats.Variant,
		stats.Level,
		stats.Score,
		stats.Hits,
		stats.Misses,
		stats.Wrong,
		stats.MaxCombo,
		stats.Notes,
		stats.DurationMs,
		stats.Reason,
	)
	if err != nil {
		return 0, err
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err = insertDirections(ctx, tx, id, dirs); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func insertDirections(ctx context.Context, tx *sql.Tx, sessionID int64, dirs []model.DirectionStats) error {
	if len(dirs) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO session_direction_stats (session_id, direction, hits, misses, wrong, latency_sum_ms, latency_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, ds := range dirs {
		if _, err := stmt.ExecContext(ctx, sessionID, ds.Direction, ds.Hits, ds.Misses, ds.Wrong, ds.LatencySumMs, ds.LatencyCount); err != nil {
			return err
		}
	}
	return nil
}

// GetWeakDirections aggregates direction stats over the most recent sessions
// of a variant.
func (s *Store) GetWeakDirections(ctx context.Context, window int, variant string) ([]model.DirectionAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_sessions AS (
		SELECT id FROM sessions
		WHERE (? = '' OR variant = ?)
		ORDER BY ended_at DESC
		LIMIT ?
	)
	SELECT ds.direction, SUM(ds.hits) AS hits, SUM(ds.misses) AS misses, SUM(ds.wrong) AS wrong,
		SUM(ds.latency_sum_ms) AS latency_sum_ms, SUM(ds.latency_count) AS latency_count
	FROM session_direction_stats ds
	JOIN recent_sessions r ON r.id = ds.session_id
	GROUP BY ds.direction`

	rows, err := s.db.QueryContext(ctx, query, variant, variant, window)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanDirectionAggregates(rows)
}

// ListSessions returns session aggregates filtered by stats config.
func (s *Store) ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, cfg.Mode)
	}
	if cfg.Variant != "" {
		clauses = append(clauses, "variant = ?")
		args = append(args, cfg.Variant)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(timeLayout))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, mode, variant, level, score, hits, misses, wrong, max_combo, duration_ms
		FROM sessions
		WHERE %s
		ORDER BY ended_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Mode, &agg.Variant, &agg.Level,
			&agg.Score, &agg.Hits, &agg.Misses, &agg.Wrong, &agg.MaxCombo, &agg.DurationMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// ListDirectionAggregatesForSessions aggregates per-direction stats across sessions.
func (s *Store) ListDirectionAggregatesForSessions(ctx context.Context, sessionIDs []int64) ([]model.DirectionAggregate, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(sessionIDs))
	args := make([]any, len(sessionIDs))
	for i, id := range sessionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT direction, SUM(hits) AS hits, SUM(misses) AS misses, SUM(wrong) AS wrong,
		SUM(latency_sum_ms) AS latency_sum_ms, SUM(latency_count) AS latency_count
		FROM session_direction_stats
		WHERE session_id IN (%s)
		GROUP BY direction`, strings.Join(placeholders, ","))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	return scanDirectionAggregates(rows)
}

func scanDirectionAggregates(rows *sql.Rows) ([]model.DirectionAggregate, error) {
	var result []model.DirectionAggregate
	for rows.Next() {
		var agg model.DirectionAggregate
		if err := rows.Scan(&agg.Direction, &agg.Hits, &agg.Misses, &agg.Wrong, &agg.LatencySumMs, &agg.LatencyCount); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
