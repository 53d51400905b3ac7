package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/staging"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load raw CSV files into the staging schema",
	Long: `Load the CSV files produced by 'seed' into the staging schema.
Staging tables are truncated and reloaded, and each table's row count is
verified against the file.

Example:
  pgedge-warehouse ingest --connection "postgres://..."`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "",
		"directory holding the raw CSV files (default: <data-dir>/raw)")
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	dir := ingestDir
	if dir == "" {
		dir = filepath.Join(cfg.DataDir, "raw")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	started := time.Now().UTC()
	summary, err := staging.NewIngester(pool).Ingest(ctx, dir)
	recordStageRun(ctx, pool, "ingest", started, summary, err)
	if err != nil {
		return err
	}

	logging.Info().
		Int("total_rows", summary.Total()).
		Str("dir", dir).
		Msg("Ingest complete")
	return nil
}
