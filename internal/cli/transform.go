package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/production"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Cleanse staging rows into the production schema",
	Long: `Move staged rows into the production schema: text fields are
trimmed, emails lowercased, and rows failing validity filters dropped.
Customers and products are upserted; transactions and their items are
append-only, so already-transformed events are skipped.

Example:
  pgedge-warehouse transform --connection "postgres://..."`,
	RunE: runTransform,
}

func runTransform(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	started := time.Now().UTC()
	summary, err := production.NewTransformer(pool).Transform(ctx)
	recordStageRun(ctx, pool, "transform", started, summary, err)
	if err != nil {
		return err
	}

	if summary.ProductsFiltered > 0 || summary.TransactionsFiltered > 0 ||
		summary.ItemsFiltered > 0 {
		logging.Warn().
			Int64("products", summary.ProductsFiltered).
			Int64("transactions", summary.TransactionsFiltered).
			Int64("items", summary.ItemsFiltered).
			Msg("Rows dropped by validity filters")
	}
	return nil
}
