package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/bizdir/bizdir/internal/jobs"
)

// Pruner deletes audit entries recorded before a cutoff.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// AuditPruneJob enforces the audit retention window.
type AuditPruneJob struct {
	pruner  Pruner
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	now     func() time.Time
}

// NewAuditPruneJob constructs the job. A nil clock uses time.Now and nil
// metrics disable instrumentation.
func NewAuditPruneJob(pruner Pruner, logger *slog.Logger, metrics *jobmetrics.Metrics, now func() time.Time) *AuditPruneJob {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if now == nil {
		now = time.Now
	}
	return &AuditPruneJob{pruner: pruner, logger: logger, metrics: metrics, now: now}
}

// Handle processes TaskAuditPrune tasks.
func (j *AuditPruneJob) Handle(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track(TaskAuditPrune)
	return tracker.End(j.run(ctx, t))
}

func (j *AuditPruneJob) run(ctx context.Context, t *asynq.Task) error {
	var payload AuditPrunePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.RetentionDays <= 0 {
		return fmt.Errorf("jobs: bad %s payload: %w", TaskAuditPrune, asynq.SkipRetry)
	}
	cutoff := j.now().UTC().AddDate(0, 0, -payload.RetentionDays)
	deleted, err := j.pruner.Prune(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("jobs: prune audit: %w", err)
	}
	j.metrics.AddPruned(deleted)
	j.logger.Info("audit retention applied",
		slog.String("job", TaskAuditPrune),
		slog.Time("cutoff", cutoff),
		slog.Int64("deleted", deleted),
	)
	return nil
}
