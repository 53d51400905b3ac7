//-------------------------------------------------------------------------
//
// pgEdge Warehouse Load Pipeline
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package pipeline orchestrates one warehouse load run: payment method
// sync, SCD Type 2 dimension merges, fact loading, integrity
// verification, and aggregate refresh. Everything up to and including
// verification happens in a single transaction, so a failed batch
// leaves no trace.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"

	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/warehouse"
)

// RunnerConfig configures a load runner.
type RunnerConfig struct {
	Pool *pgxpool.Pool

	// Clock supplies the wall time; tests substitute a fake.
	Clock clockwork.Clock

	// AbortOnError fails the whole batch on the first fact row error
	// instead of skipping the row.
	AbortOnError bool

	// SkipAggregates leaves the aggregate tables untouched after loading.
	SkipAggregates bool
}

// Runner executes warehouse load runs.
type Runner struct {
	pool           *pgxpool.Pool
	clock          clockwork.Clock
	abortOnError   bool
	skipAggregates bool
}

// NewRunner creates a runner from the configuration.
func NewRunner(cfg RunnerConfig) *Runner {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Runner{
		pool:           cfg.Pool,
		clock:          clock,
		abortOnError:   cfg.AbortOnError,
		skipAggregates: cfg.SkipAggregates,
	}
}

// Run executes one load for the batch date. The batch transaction covers
// dimension merges, fact loading and integrity verification; the
// aggregate refresh runs in its own transaction after commit. The run is
// recorded in the run log whether it succeeds or fails.
func (r *Runner) Run(ctx context.Context, batchDate time.Time) (*Report, error) {
	started := r.clock.Now().UTC()
	batchDate = time.Date(batchDate.Year(), batchDate.Month(), batchDate.Day(),
		0, 0, 0, 0, time.UTC)

	report := &Report{BatchDate: batchDate.Format("2006-01-02")}
	err := r.run(ctx, batchDate, report)
	if err != nil {
		report.Status = StatusFailed
		report.addError(err.Error())
	}
	report.finalize()
	report.DurationMS = r.clock.Now().UTC().Sub(started).Milliseconds()

	r.recordRun(ctx, batchDate, started, report)

	if err != nil {
		return report, err
	}
	logging.Info().
		Str("status", report.Status).
		Str("batch_date", report.BatchDate).
		Int("facts_loaded", report.Facts.Loaded).
		Int("facts_skipped", report.Facts.Skipped).
		Int("facts_unresolved", report.Facts.Unresolved).
		Int64("duration_ms", report.DurationMS).
		Msg("Load complete")
	return report, nil
}

func (r *Runner) run(ctx context.Context, batchDate time.Time, report *Report) error {
	initialized, err := db.MetadataExists(ctx, r.pool)
	if err != nil {
		return fmt.Errorf("failed to check warehouse metadata: %w", err)
	}
	if !initialized {
		return fmt.Errorf("warehouse is not initialized, run 'init' first")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin batch transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	added, err := warehouse.SyncPaymentMethods(ctx, tx)
	if err != nil {
		return err
	}
	report.PaymentMethodsAdded = added

	paymentKeys, err := warehouse.LoadPaymentKeys(ctx, tx)
	if err != nil {
		return err
	}

	customerRecords, err := warehouse.FetchCustomerRecords(ctx, tx)
	if err != nil {
		return err
	}
	report.Customers, err = mergeDimension(ctx, tx, warehouse.Customers, customerRecords, batchDate)
	if err != nil {
		return err
	}

	productRecords, err := warehouse.FetchProductRecords(ctx, tx)
	if err != nil {
		return err
	}
	report.Products, err = mergeDimension(ctx, tx, warehouse.Products, productRecords, batchDate)
	if err != nil {
		return err
	}

	// Resolvers load after the merges so facts see this batch's versions.
	customerResolver, err := warehouse.NewResolver(ctx, tx, warehouse.Customers)
	if err != nil {
		return err
	}
	productResolver, err := warehouse.NewResolver(ctx, tx, warehouse.Products)
	if err != nil {
		return err
	}

	minKey, maxKey, haveCalendar, err := warehouse.CalendarRange(ctx, tx)
	if err != nil {
		return err
	}
	if !haveCalendar {
		return fmt.Errorf("date dimension is empty, run 'init' first")
	}

	lines, err := warehouse.FetchSourceLines(ctx, tx)
	if err != nil {
		return err
	}

	minLoadedKey := 0
	for _, line := range lines {
		loaded, dateKey, err := r.loadFact(ctx, tx, line, customerResolver,
			productResolver, paymentKeys, minKey, maxKey, report)
		if err != nil {
			return err
		}
		if loaded && (minLoadedKey == 0 || dateKey < minLoadedKey) {
			minLoadedKey = dateKey
		}
	}

	if err := warehouse.VerifyIntegrity(ctx, tx, warehouse.Customers); err != nil {
		return err
	}
	if err := warehouse.VerifyIntegrity(ctx, tx, warehouse.Products); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}

	if r.skipAggregates || minLoadedKey == 0 {
		return nil
	}
	stats, err := warehouse.NewRefresher(r.pool).Refresh(ctx, warehouse.ScopeSince(minLoadedKey))
	if err != nil {
		return err
	}
	report.Aggregates = &stats
	return nil
}

// loadFact validates, resolves and inserts one fact row. Row-level
// problems are counted and sampled; they only abort the batch when the
// runner was configured to do so. Ambiguity is never a row-level
// problem: it means the dimension state is corrupt.
func (r *Runner) loadFact(ctx context.Context, tx warehouse.Querier, line warehouse.SourceLine,
	customers, products *warehouse.Resolver, paymentKeys map[string]int64,
	minKey, maxKey int, report *Report) (bool, int, error) {

	measures, flag, err := warehouse.BuildMeasures(line)
	if err != nil {
		report.Facts.Invalid++
		report.addError(err.Error())
		if r.abortOnError {
			return false, 0, err
		}
		return false, 0, nil
	}

	customerKey, err := customers.Resolve(line.CustomerID, line.TransactionDate)
	if err != nil {
		return r.resolveFailure(report, err)
	}
	productKey, err := products.Resolve(line.ProductID, line.TransactionDate)
	if err != nil {
		return r.resolveFailure(report, err)
	}

	paymentKey, ok := paymentKeys[line.PaymentMethod]
	if !ok {
		err := fmt.Errorf("item %s: unknown payment method %q", line.ItemID, line.PaymentMethod)
		report.Facts.Unresolved++
		report.addError(err.Error())
		if r.abortOnError {
			return false, 0, err
		}
		return false, 0, nil
	}

	dateKey := warehouse.DateKey(line.TransactionDate)
	if dateKey < minKey || dateKey > maxKey {
		err := fmt.Errorf("item %s: transaction date %s outside the populated calendar",
			line.ItemID, line.TransactionDate.Format("2006-01-02"))
		report.Facts.Unresolved++
		report.addError(err.Error())
		if r.abortOnError {
			return false, 0, err
		}
		return false, 0, nil
	}

	inserted, err := warehouse.InsertFact(ctx, tx, warehouse.FactRow{
		DateKey:          dateKey,
		CustomerKey:      customerKey,
		ProductKey:       productKey,
		PaymentMethodKey: paymentKey,
		TransactionID:    line.TransactionID,
		ItemID:           line.ItemID,
		Measures:         measures,
		QualityFlag:      flag,
	})
	if err != nil {
		return false, 0, err
	}
	if !inserted {
		report.Facts.Skipped++
		return false, 0, nil
	}
	report.Facts.Loaded++
	if flag != nil {
		report.Facts.Flagged++
	}
	return true, dateKey, nil
}

// resolveFailure classifies a resolver error. Unresolved keys are
// row-level and skippable; ambiguous keys are structural corruption and
// always fatal.
func (r *Runner) resolveFailure(report *Report, err error) (bool, int, error) {
	var ambiguous *warehouse.AmbiguousKeyError
	if errors.As(err, &ambiguous) {
		return false, 0, err
	}

	var unresolved *warehouse.UnresolvedKeyError
	if errors.As(err, &unresolved) {
		report.Facts.Unresolved++
		report.addError(err.Error())
		if r.abortOnError {
			return false, 0, err
		}
		return false, 0, nil
	}
	return false, 0, err
}

// recordRun writes the run log row. Logging failures must not mask the
// run's own outcome, so they are logged and dropped.
func (r *Runner) recordRun(ctx context.Context, batchDate, started time.Time, report *Report) {
	payload, err := json.Marshal(report)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to marshal load report")
		payload = nil
	}
	rec := db.RunRecord{
		RunID:       uuid.New(),
		Stage:       "load",
		BatchDate:   &batchDate,
		Status:      report.Status,
		Report:      payload,
		StartedAt:   started,
		CompletedAt: r.clock.Now().UTC(),
	}
	if err := db.RecordRun(ctx, r.pool, rec); err != nil {
		logging.Warn().Err(err).Msg("Failed to record run")
	}
}

// mergeDimension runs one SCD Type 2 merge inside the batch transaction.
func mergeDimension(ctx context.Context, tx warehouse.Querier, dim warehouse.Dimension,
	records []warehouse.Record, batchDate time.Time) (warehouse.VersionStats, error) {

	current, err := warehouse.LoadCurrentVersions(ctx, tx, dim)
	if err != nil {
		return warehouse.VersionStats{}, err
	}

	versioner := warehouse.NewVersioner(dim)
	decisions, stats := versioner.Stage(records, current)
	if err := versioner.Apply(ctx, tx, decisions, batchDate); err != nil {
		return stats, err
	}

	logging.Debug().
		Str("dimension", dim.Name).
		Int("new", stats.NewEntities).
		Int("superseded", stats.Superseded).
		Int("overlaid", stats.Overlaid).
		Int("unchanged", stats.Unchanged).
		Msg("Dimension merge staged and applied")
	return stats, nil
}
