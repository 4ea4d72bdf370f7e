//-------------------------------------------------------------------------
//
// pgEdge Data Warehouse Loader
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pgEdge/pgedge-dwload/internal/logging"
	"github.com/pgEdge/pgedge-dwload/internal/sqlgen"
)

// RunLogTable is the warehouse table that records load runs.
const RunLogTable = "etl_run_log"

// RunStage is the pseudo stage name under which a whole run is recorded.
const RunStage = "run"

// Run log statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

var runLogColumns = []string{
	"run_id", "stage", "status", "rows_affected", "started_at", "finished_at", "error",
}

var runLogKeys = []string{"run_id", "stage"}

// RunEntry is one row of the run log.
type RunEntry struct {
	RunID      string
	Stage      string
	Status     string
	Rows       int64
	StartedAt  time.Time
	FinishedAt *time.Time
	Error      string
}

// RunLog writes load progress to the warehouse.
type RunLog struct {
	db      Execer
	dialect sqlgen.Dialect
	table   string
}

// NewRunLog returns a run log stored in the given warehouse schema.
func NewRunLog(db Execer, dialect sqlgen.Dialect, schema string) *RunLog {
	return &RunLog{
		db:      db,
		dialect: dialect,
		table:   sqlgen.Qualify(dialect, schema, RunLogTable),
	}
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Ensure creates the run log table if it doesn't exist.
func (r *RunLog) Ensure(ctx context.Context) error {
	ts := r.dialect.TimestampType()
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    run_id        VARCHAR(64) NOT NULL,
    stage         VARCHAR(64) NOT NULL,
    status        VARCHAR(16) NOT NULL,
    rows_affected BIGINT NOT NULL DEFAULT 0,
    started_at    %s NOT NULL,
    finished_at   %s NULL,
    error         TEXT NULL,
    PRIMARY KEY (run_id, stage)
)`, r.table, ts, ts)

	if _, err := r.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create run log table: %w", err)
	}
	return nil
}

// Record inserts or overwrites the entry for (RunID, Stage).
func (r *RunLog) Record(ctx context.Context, e RunEntry) error {
	var finished any
	if e.FinishedAt != nil {
		finished = e.FinishedAt.UTC()
	}
	var errText any
	if e.Error != "" {
		errText = e.Error
	}

	query := r.dialect.Replace(r.table, runLogColumns, runLogKeys,
		sqlgen.Values(r.dialect, 1, len(runLogColumns)))

	_, err := r.db.Exec(ctx, query,
		e.RunID, e.Stage, e.Status, e.Rows, e.StartedAt.UTC(), finished, errText)
	if err != nil {
		return fmt.Errorf("failed to record run log entry %s/%s: %w", e.RunID, e.Stage, err)
	}

	logging.Debug().
		Str("run_id", e.RunID).
		Str("stage", e.Stage).
		Str("status", e.Status).
		Msg("Recorded run log entry")

	return nil
}

// Entries returns every entry recorded for runID in start order.
func (r *RunLog) Entries(ctx context.Context, runID string) ([]RunEntry, error) {
	query := fmt.Sprintf(`SELECT run_id, stage, status, rows_affected, started_at, finished_at, error
FROM %s WHERE run_id = %s ORDER BY started_at, stage`, r.table, r.dialect.Placeholder(1))

	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var (
			e        RunEntry
			finished *time.Time
			errText  *string
		)
		if err := rows.Scan(&e.RunID, &e.Stage, &e.Status, &e.Rows,
			&e.StartedAt, &finished, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan run log entry: %w", err)
		}
		e.FinishedAt = finished
		if errText != nil {
			e.Error = *errText
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
