//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// createRunLogTableSQL creates the run log table if it doesn't exist.
const createRunLogTableSQL = `
CREATE TABLE IF NOT EXISTS warehouse_run_log (
    run_id       UUID PRIMARY KEY,
    stage        TEXT NOT NULL,
    batch_date   DATE,
    status       TEXT NOT NULL,
    report       JSONB,
    started_at   TIMESTAMPTZ NOT NULL,
    completed_at TIMESTAMPTZ
)`

// RunRecord is one pipeline stage execution in the run log.
type RunRecord struct {
	RunID       uuid.UUID
	Stage       string
	BatchDate   *time.Time
	Status      string
	Report      json.RawMessage
	StartedAt   time.Time
	CompletedAt time.Time
}

// RecordRun writes a completed stage execution to the run log.
// Failed stages are recorded too, so the log creates its table on demand.
func RecordRun(ctx context.Context, pool *pgxpool.Pool, rec RunRecord) error {
	if _, err := pool.Exec(ctx, createRunLogTableSQL); err != nil {
		return fmt.Errorf("failed to create run log table: %w", err)
	}

	var report any
	if len(rec.Report) > 0 {
		report = rec.Report
	}

	_, err := pool.Exec(ctx, `
        INSERT INTO warehouse_run_log
            (run_id, stage, batch_date, status, report, started_at, completed_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, rec.RunID, rec.Stage, rec.BatchDate, rec.Status, report,
		rec.StartedAt, rec.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", rec.RunID, err)
	}
	return nil
}

// RecentRuns returns the most recent stage executions, newest first.
func RecentRuns(ctx context.Context, pool *pgxpool.Pool, limit int) ([]RunRecord, error) {
	rows, err := pool.Query(ctx, `
        SELECT run_id, stage, batch_date, status, report, started_at, completed_at
        FROM warehouse_run_log
        ORDER BY started_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		if err := rows.Scan(&rec.RunID, &rec.Stage, &rec.BatchDate, &rec.Status,
			&rec.Report, &rec.StartedAt, &rec.CompletedAt); err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}

	return runs, rows.Err()
}
