package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/config"
	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/production"
	"github.com/pgEdge/pgedge-warehouse/internal/staging"
	"github.com/pgEdge/pgedge-warehouse/internal/warehouse"
)

var (
	initCalendarStart string
	initCalendarEnd   string
	initDropExisting  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the staging, production and warehouse schemas",
	Long: `Create the three pipeline schemas and populate the date dimension
for the configured calendar range. Re-running init on an initialized
database is safe; use --drop-existing to start from scratch.

Example:
  pgedge-warehouse init --connection "postgres://..." --calendar-start 2024-01-01`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringVar(&initCalendarStart, "calendar-start", "",
		"first date populated into the date dimension (YYYY-MM-DD)")
	initCmd.Flags().StringVar(&initCalendarEnd, "calendar-end", "",
		"last date populated into the date dimension (YYYY-MM-DD)")
	initCmd.Flags().BoolVar(&initDropExisting, "drop-existing", false,
		"drop existing schemas before initialization")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if initCalendarStart != "" {
		cfg.Init.CalendarStart = initCalendarStart
	}
	if initCalendarEnd != "" {
		cfg.Init.CalendarEnd = initCalendarEnd
	}
	if initDropExisting {
		cfg.Init.DropExisting = true
	}

	// Validate configuration
	if err := cfg.ValidateInit(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if cfg.Init.DropExisting {
		logging.Info().Msg("Dropping existing schemas")
		if err := warehouse.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop warehouse schema: %w", err)
		}
		if err := production.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop production schema: %w", err)
		}
		if err := staging.DropSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to drop staging schema: %w", err)
		}
		if err := db.DropMetadata(ctx, pool); err != nil {
			logging.Debug().Err(err).Msg("No metadata table to drop")
		}
	}

	logging.Info().Msg("Creating schemas")
	if err := staging.CreateSchema(ctx, pool); err != nil {
		return err
	}
	if err := production.CreateSchema(ctx, pool); err != nil {
		return err
	}
	if err := warehouse.CreateSchema(ctx, pool); err != nil {
		return err
	}

	start, _ := time.Parse(config.DateFormat, cfg.Init.CalendarStart)
	end, _ := time.Parse(config.DateFormat, cfg.Init.CalendarEnd)
	rows, err := warehouse.PopulateCalendar(ctx, pool, start, end)
	if err != nil {
		return err
	}
	logging.Info().
		Str("start", cfg.Init.CalendarStart).
		Str("end", cfg.Init.CalendarEnd).
		Int("rows", rows).
		Msg("Populated date dimension")

	if err := db.SaveMetadata(ctx, pool, cfg.Init.CalendarStart, cfg.Init.CalendarEnd); err != nil {
		return fmt.Errorf("failed to save metadata: %w", err)
	}

	logging.Info().Msg("Initialization complete")
	return nil
}
