// Package persistence records per-step aggregate statistics to SQLite
// so plotting and reporting tools can read a run's history after the
// fact. Simulation state itself is never persisted, only the emitted
// aggregates.
package persistence

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/agora/internal/config"
	"github.com/talgya/agora/internal/engine"
)

// Store wraps a SQLite connection holding run metadata and per-step
// statistics rows.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	st := &Store{conn: conn}
	if err := st.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return st, nil
}

// Close closes the database connection.
func (st *Store) Close() error {
	return st.conn.Close()
}

func (st *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		population INTEGER NOT NULL,
		steps INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		scheduled INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS step_stats (
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		opinion_counts TEXT NOT NULL,
		mean_integrity REAL NOT NULL,
		target_counts TEXT,
		PRIMARY KEY (run_id, step)
	);

	CREATE INDEX IF NOT EXISTS idx_step_stats_run ON step_stats(run_id);
	`
	_, err := st.conn.Exec(schema)
	return err
}

// BeginRun registers a new run and returns its id.
func (st *Store) BeginRun(cfg config.Config) (string, error) {
	id := uuid.NewString()
	scheduled := 0
	if cfg.Schedule.Enabled {
		scheduled = 1
	}
	_, err := st.conn.Exec(
		`INSERT INTO runs (id, created_at, width, height, population, steps, seed, scheduled)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339),
		cfg.Width, cfg.Height, cfg.Population, cfg.Steps, cfg.Seed, scheduled,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordStep appends one step's aggregates to the run's history.
func (st *Store) RecordStep(runID string, stats engine.StepStats) error {
	opinions, err := json.Marshal(stats.OpinionCounts)
	if err != nil {
		return fmt.Errorf("marshal opinion counts: %w", err)
	}

	var targets any
	if stats.TargetCounts != nil {
		data, err := json.Marshal(stats.TargetCounts)
		if err != nil {
			return fmt.Errorf("marshal target counts: %w", err)
		}
		targets = string(data)
	}

	_, err = st.conn.Exec(
		`INSERT INTO step_stats (run_id, step, opinion_counts, mean_integrity, target_counts)
		 VALUES (?, ?, ?, ?, ?)`,
		runID, stats.Step, string(opinions), stats.MeanIntegrity, targets,
	)
	if err != nil {
		return fmt.Errorf("insert step stats: %w", err)
	}
	return nil
}

// History returns a run's recorded statistics in step order.
func (st *Store) History(runID string) ([]engine.StepStats, error) {
	type row struct {
		Step          int     `db:"step"`
		OpinionCounts string  `db:"opinion_counts"`
		MeanIntegrity float64 `db:"mean_integrity"`
		TargetCounts  *string `db:"target_counts"`
	}

	var rows []row
	err := st.conn.Select(&rows,
		`SELECT step, opinion_counts, mean_integrity, target_counts
		 FROM step_stats WHERE run_id = ? ORDER BY step`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("select step stats: %w", err)
	}

	out := make([]engine.StepStats, 0, len(rows))
	for _, r := range rows {
		stats := engine.StepStats{
			Step:          r.Step,
			MeanIntegrity: r.MeanIntegrity,
		}
		if err := json.Unmarshal([]byte(r.OpinionCounts), &stats.OpinionCounts); err != nil {
			return nil, fmt.Errorf("unmarshal opinion counts: %w", err)
		}
		if r.TargetCounts != nil {
			if err := json.Unmarshal([]byte(*r.TargetCounts), &stats.TargetCounts); err != nil {
				return nil, fmt.Errorf("unmarshal target counts: %w", err)
			}
		}
		out = append(out, stats)
	}
	return out, nil
}
