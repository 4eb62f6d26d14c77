// Package history persists run results to a local SQLite database, so
// flaky jobs and healing churn can be inspected across runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/avishekjana-89/flowright/packages/core/runner"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	passed      INTEGER NOT NULL,
	failed      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS jobs (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	ok          INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	duration_ms INTEGER NOT NULL,
	steps       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_jobs_run ON jobs(run_id);
CREATE INDEX IF NOT EXISTS idx_jobs_name ON jobs(name);
`

// Recorder is a sqlite-backed run log.
type Recorder struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

// Close closes the database connection
func (r *Recorder) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Record stores one suite result, all or nothing.
func (r *Recorder) Record(ctx context.Context, result *runner.SuiteResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, passed, failed) VALUES (?, ?, ?, ?, ?)`,
		result.RunID, result.StartedAt, result.FinishedAt, result.Passed, result.Failed)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO jobs (run_id, name, ok, error, duration_ms, steps) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare job insert: %w", err)
	}
	defer stmt.Close()

	for _, jr := range result.Jobs {
		if _, err := stmt.ExecContext(ctx, result.RunID, jr.Name, jr.OK, jr.Error, jr.Duration.Milliseconds(), len(jr.Steps)); err != nil {
			return fmt.Errorf("failed to insert job %q: %w", jr.Name, err)
		}
	}

	return tx.Commit()
}

// RunSummary is one recorded run.
type RunSummary struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Passed     int
	Failed     int
}

// Recent returns the most recent runs, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, passed, failed FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var rs RunSummary
		if err := rows.Scan(&rs.ID, &rs.StartedAt, &rs.FinishedAt, &rs.Passed, &rs.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}

// JobStats summarizes one job's pass rate across recorded runs.
type JobStats struct {
	Name      string
	Runs      int
	Passes    int
	AvgMillis int64
	LastError string
}

// JobHistory aggregates outcomes per job name, most frequently run first.
func (r *Recorder) JobHistory(ctx context.Context, limit int) ([]JobStats, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT name,
		       COUNT(*),
		       SUM(ok),
		       CAST(AVG(duration_ms) AS INTEGER),
		       COALESCE(MAX(CASE WHEN ok = 0 THEN error END), '')
		FROM jobs
		GROUP BY name
		ORDER BY COUNT(*) DESC, name
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var out []JobStats
	for rows.Next() {
		var js JobStats
		if err := rows.Scan(&js.Name, &js.Runs, &js.Passes, &js.AvgMillis, &js.LastError); err != nil {
			return nil, fmt.Errorf("failed to scan job stats: %w", err)
		}
		out = append(out, js)
	}
	return out, rows.Err()
}
