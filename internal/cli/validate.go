package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
	"github.com/pgEdge/pgedge-warehouse/internal/quality"
)

var (
	validateReportPath      string
	validateFailOnViolation bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the data quality checks and write a report",
	Long: `Run every registered data quality check against the operational
and warehouse schemas, then write a JSON report with per-check results,
violation counts, sample identifiers, and an overall score and grade.
Checks are pure reads and never block or modify a load.

Example:
  pgedge-warehouse validate --fail-on-violation --connection "postgres://..."`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateReportPath, "report-path", "",
		"where to write the JSON quality report")
	validateCmd.Flags().BoolVar(&validateFailOnViolation, "fail-on-violation", false,
		"exit non-zero when any check reports violations")
}

func runValidate(cmd *cobra.Command, args []string) error {
	// Override config with CLI flags
	if validateReportPath != "" {
		cfg.Validation.ReportPath = validateReportPath
	}
	if validateFailOnViolation {
		cfg.Validation.FailOnViolation = true
	}

	// Validate configuration
	if err := cfg.ValidateValidate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	started := time.Now().UTC()
	report, err := quality.NewRunner(quality.RunnerConfig{Pool: pool}).Run(ctx)
	recordStageRun(ctx, pool, "validate", started, report, err)
	if err != nil {
		return err
	}

	if err := report.Write(cfg.Validation.ReportPath); err != nil {
		return err
	}
	logging.Info().
		Str("path", cfg.Validation.ReportPath).
		Int("score", report.Score).
		Str("grade", report.Grade).
		Msg("Quality report written")

	if cfg.Validation.FailOnViolation && report.TotalViolations > 0 {
		return fmt.Errorf("%d data quality violations found (grade %s)",
			report.TotalViolations, report.Grade)
	}
	return nil
}
