package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/config"
	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/pipeline"
)

var (
	loadBatchDate      string
	loadAbortOnError   bool
	loadSkipAggregates bool
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Run a warehouse load for a batch date",
	Long: `Run one warehouse load: sync payment methods, merge the customer
and product dimensions (SCD Type 2), load facts with date-scoped key
resolution, verify dimension integrity, and refresh the aggregates.
The batch commits atomically; a failed run leaves the warehouse
untouched.

The batch date drives dimension versioning: changed attributes close the
old version the day before it and open a new one on it. For the first
load, align it with the start of operational history.

Example:
  pgedge-warehouse load --batch-date 2024-01-01 --connection "postgres://..."`,
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadBatchDate, "batch-date", "",
		"batch date for dimension versioning (YYYY-MM-DD, default: today)")
	loadCmd.Flags().BoolVar(&loadAbortOnError, "abort-on-error", false,
		"fail the whole batch on the first fact row error")
	loadCmd.Flags().BoolVar(&loadSkipAggregates, "skip-aggregates", false,
		"skip the aggregate refresh after fact loading")
}

func runLoad(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if loadBatchDate != "" {
		cfg.Load.BatchDate = loadBatchDate
	}
	if loadAbortOnError {
		cfg.Load.AbortOnError = true
	}
	if loadSkipAggregates {
		cfg.Load.SkipAggregates = true
	}

	// Validate configuration
	if err := cfg.ValidateLoad(); err != nil {
		return err
	}

	batchDate, err := parseBatchDate(cfg.Load.BatchDate)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logging.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal, rolling back batch")
		cancel()
	}()

	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	runner := pipeline.NewRunner(pipeline.RunnerConfig{
		Pool:           pool,
		AbortOnError:   cfg.Load.AbortOnError,
		SkipAggregates: cfg.Load.SkipAggregates,
	})

	report, err := runner.Run(ctx, batchDate)
	if err != nil {
		return err
	}
	if report.Status == pipeline.StatusWarnings {
		for _, sample := range report.Errors {
			logging.Warn().Msg(sample)
		}
	}
	return nil
}

// parseBatchDate parses the configured batch date, defaulting to the
// current UTC date when none is set.
func parseBatchDate(value string) (time.Time, error) {
	if value == "" {
		return time.Now().UTC(), nil
	}
	batchDate, err := time.Parse(config.DateFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid batch_date %q: expected YYYY-MM-DD", value)
	}
	return batchDate, nil
}
