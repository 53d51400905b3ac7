//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/pgEdge/pgedge-warehouse/internal/logging"
)

// RunnerConfig configures the validator.
type RunnerConfig struct {
	Pool *pgxpool.Pool

	// Clock supplies the as-of date for time-dependent checks.
	Clock clockwork.Clock

	// Concurrency bounds how many checks run at once. Checks are
	// independent pure reads, so they parallelize freely.
	Concurrency int

	// SampleLimit caps how many offending identifiers each result keeps.
	SampleLimit int
}

// Runner executes the registered checks against the database.
type Runner struct {
	cfg RunnerConfig
}

// NewRunner creates a validator runner, applying defaults for any
// unset configuration.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.SampleLimit <= 0 {
		cfg.SampleLimit = 5
	}
	return &Runner{cfg: cfg}
}

// Run executes every check in the catalogue concurrently and assembles
// the report. Checks never mutate data, so running alongside a load is
// safe; the view may simply be slightly stale or slightly ahead.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	checks := All()
	results := make([]CheckResult, len(checks))
	asOf := r.cfg.Clock.Now().UTC().Truncate(24 * time.Hour)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for i, check := range checks {
		g.Go(func() error {
			result, err := r.runCheck(gctx, check, asOf)
			if err != nil {
				return fmt.Errorf("check %s: %w", check.Name, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := NewReport(r.cfg.Clock.Now().UTC(), results)
	logging.Info().
		Int("checks", len(results)).
		Int64("violations", report.TotalViolations).
		Int("score", report.Score).
		Str("grade", report.Grade).
		Msg("Validation complete")
	return report, nil
}

func (r *Runner) runCheck(ctx context.Context, check Check, asOf time.Time) (CheckResult, error) {
	result := CheckResult{
		Name:        check.Name,
		Category:    check.Category,
		Description: check.Description,
	}

	var args []any
	if check.NeedsAsOf {
		args = append(args, asOf)
	}

	start := time.Now()
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) AS violations", check.Query)
	if err := r.cfg.Pool.QueryRow(ctx, countQuery, args...).Scan(&result.Violations); err != nil {
		return result, err
	}

	if result.Violations > 0 {
		sampleQuery := fmt.Sprintf("%s LIMIT %d", check.Query, r.cfg.SampleLimit)
		rows, err := r.cfg.Pool.Query(ctx, sampleQuery, args...)
		if err != nil {
			return result, err
		}
		defer rows.Close()
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return result, err
			}
			result.Samples = append(result.Samples, id)
		}
		if err := rows.Err(); err != nil {
			return result, err
		}
	}
	result.DurationMS = time.Since(start).Milliseconds()

	logging.Debug().
		Str("check", check.Name).
		Int64("violations", result.Violations).
		Msg("Check complete")
	return result, nil
}
