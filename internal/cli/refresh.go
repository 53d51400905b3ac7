package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/config"
	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/warehouse"
)

var refreshSince string

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rebuild the aggregate tables from facts",
	Long: `Rebuild the summary tables from fact_sales. By default everything
is rebuilt; --since limits the daily aggregate to dates on or after the
given date. Product and customer aggregates always rebuild in full.
Refreshing is idempotent and safe to run at any time.

Example:
  pgedge-warehouse refresh --since 2024-06-01 --connection "postgres://..."`,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().StringVar(&refreshSince, "since", "",
		"rebuild daily aggregates from this date onward (YYYY-MM-DD)")
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	scope := warehouse.ScopeAll()
	if refreshSince != "" {
		since, err := time.Parse(config.DateFormat, refreshSince)
		if err != nil {
			return fmt.Errorf("invalid --since %q: expected YYYY-MM-DD", refreshSince)
		}
		scope = warehouse.ScopeSince(warehouse.DateKey(since))
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	started := time.Now().UTC()
	stats, err := warehouse.NewRefresher(pool).Refresh(ctx, scope)
	recordStageRun(ctx, pool, "refresh", started, stats, err)
	if err != nil {
		return err
	}

	logging.Info().
		Int64("daily_sales", stats.DailySales).
		Int64("product_performance", stats.ProductPerformance).
		Int64("customer_metrics", stats.CustomerMetrics).
		Msg("Aggregate refresh complete")
	return nil
}
