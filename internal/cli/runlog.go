package cli

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pgEdge/pgedge-warehouse/internal/db"
	"github.com/pgEdge/pgedge-warehouse/internal/logging"
)

// recordStageRun writes a run log row for a pipeline stage. The load
// stage records its own runs; this helper covers the others. Run logging
// failures are logged and dropped so they never mask the stage outcome.
func recordStageRun(ctx context.Context, pool *pgxpool.Pool, stage string,
	started time.Time, report any, stageErr error) {

	status := "success"
	if stageErr != nil {
		status = "failed"
	}

	var payload json.RawMessage
	if report != nil {
		data, err := json.Marshal(report)
		if err == nil {
			payload = data
		}
	}

	err := db.RecordRun(ctx, pool, db.RunRecord{
		RunID:       uuid.New(),
		Stage:       stage,
		Status:      status,
		Report:      payload,
		StartedAt:   started,
		CompletedAt: time.Now().UTC(),
	})
	if err != nil {
		logging.Warn().Err(err).Str("stage", stage).Msg("Failed to record run")
	}
}
