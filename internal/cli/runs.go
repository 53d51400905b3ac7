package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pgEdge/pgedge-warehouse/internal/db"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent pipeline runs",
	Long: `List the most recent pipeline stage executions from the run log,
newest first.`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20,
		"maximum number of runs to show")
}

func runRuns(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	runs, err := db.RecentRuns(ctx, pool, runsLimit)
	if err != nil {
		return fmt.Errorf("failed to read run log: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded yet.")
		return nil
	}

	cmd.Printf("%-36s  %-10s  %-10s  %-22s  %s\n",
		"RUN ID", "STAGE", "BATCH DATE", "STARTED", "STATUS")
	for _, run := range runs {
		batchDate := "-"
		if run.BatchDate != nil {
			batchDate = run.BatchDate.Format("2006-01-02")
		}
		cmd.Printf("%-36s  %-10s  %-10s  %-22s  %s\n",
			run.RunID, run.Stage, batchDate,
			run.StartedAt.Format("2006-01-02 15:04:05 MST"), run.Status)
	}
	return nil
}
