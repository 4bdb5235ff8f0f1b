package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	portssvc "github.com/quantabook/ledgercore/internal/core/ports/services"
	"github.com/quantabook/ledgercore/internal/dto"
	"github.com/quantabook/ledgercore/internal/platform/logging"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskFxAuditRetention archives rate audit events past the retention window.
	TaskFxAuditRetention = "fxaudit:retention"
)

// FxAuditRetentionPayload sizes one retention run.
type FxAuditRetentionPayload struct {
	RetentionDays int  `json:"retentionDays"`
	BatchSize     int  `json:"batchSize"`
	DryRun        bool `json:"dryRun"`
}

// NewFxAuditRetentionTask constructs an Asynq task.
func NewFxAuditRetentionTask(payload FxAuditRetentionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFxAuditRetention, data), nil
}

// NewFxAuditRetentionHandler processes TaskFxAuditRetention tasks by planning
// and executing a retention run against the audit trail.
func NewFxAuditRetentionHandler(fxAudit portssvc.FxAuditSvcFacade) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		logger := logging.FromCtx(ctx)

		var payload FxAuditRetentionPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}

		plan, err := fxAudit.Plan(ctx, time.Now().UTC(), dto.PlanFxAuditTTLRequest{
			RetentionDays: payload.RetentionDays,
			BatchSize:     payload.BatchSize,
		})
		if err != nil {
			return err
		}
		if plan.EstimatedBatches == 0 && !payload.DryRun {
			logger.Info("No rate audit events past retention, skipping run")
			return nil
		}

		result, err := fxAudit.Execute(ctx, *plan, payload.DryRun)
		if err != nil {
			return err
		}
		logger.Info("Rate audit retention task done",
			slog.Int64("archived", result.ArchivedCount),
			slog.Int("batches", result.Batches),
			slog.Bool("dry_run", result.DryRun),
		)
		return nil
	}
}
