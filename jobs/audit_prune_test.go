package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/bizdir/bizdir/internal/jobs"
)

type stubPruner struct {
	cutoff  time.Time
	deleted int64
	err     error
	calls   int
}

func (s *stubPruner) Prune(_ context.Context, before time.Time) (int64, error) {
	s.calls++
	s.cutoff = before
	return s.deleted, s.err
}

func fixedClock() time.Time {
	return time.Date(2024, 6, 30, 3, 0, 0, 0, time.UTC)
}

func TestAuditPruneUsesRetention(t *testing.T) {
	pruner := &stubPruner{deleted: 12}
	job := NewAuditPruneJob(pruner, nil, nil, fixedClock)
	task, err := NewAuditPruneTask(AuditPrunePayload{RetentionDays: 30})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))

	assert.Equal(t, 1, pruner.calls)
	assert.Equal(t, time.Date(2024, 5, 31, 3, 0, 0, 0, time.UTC), pruner.cutoff)
}

func TestAuditPruneBadPayloadSkipsRetry(t *testing.T) {
	pruner := &stubPruner{}
	job := NewAuditPruneJob(pruner, nil, nil, fixedClock)

	err := job.Handle(context.Background(), asynq.NewTask(TaskAuditPrune, []byte(`{"retention_days":0}`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskAuditPrune, []byte(`not json`)))
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Zero(t, pruner.calls)
}

func TestAuditPrunePropagatesStoreErrors(t *testing.T) {
	pruner := &stubPruner{err: errors.New("db down")}
	job := NewAuditPruneJob(pruner, nil, nil, fixedClock)
	task, err := NewAuditPruneTask(AuditPrunePayload{RetentionDays: 7})
	require.NoError(t, err)

	err = job.Handle(context.Background(), task)

	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestNewAuditPruneTaskRejectsNonPositive(t *testing.T) {
	_, err := NewAuditPruneTask(AuditPrunePayload{RetentionDays: -1})
	assert.Error(t, err)
}

func TestNewWorkerRegistersCron(t *testing.T) {
	task, err := NewAuditPruneTask(AuditPrunePayload{RetentionDays: 90})
	require.NoError(t, err)

	worker, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Handlers:  []TaskHandler{{Type: TaskAuditPrune, Handler: NewAuditPruneJob(&stubPruner{}, nil, nil, nil).Handle}},
		Cron:      []CronRegistration{{Spec: "0 3 * * *", Task: task}},
	})
	require.NoError(t, err)
	assert.NotNil(t, worker.scheduler)

	_, err = NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: "127.0.0.1:0"},
		Cron:      []CronRegistration{{Spec: "not a cron", Task: task}},
	})
	assert.Error(t, err)
}

func TestAuditPruneRecordsMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	job := NewAuditPruneJob(&stubPruner{deleted: 4}, nil, jobmetrics.NewMetrics(registry), fixedClock)
	task, err := NewAuditPruneTask(AuditPrunePayload{RetentionDays: 30})
	require.NoError(t, err)

	require.NoError(t, job.Handle(context.Background(), task))

	families, err := registry.Gather()
	require.NoError(t, err)
	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				values[mf.GetName()] += c.GetValue()
			}
		}
	}
	assert.Equal(t, 4.0, values["bizdir_audit_pruned_total"])
	assert.Equal(t, 1.0, values["bizdir_jobs_total"])
}
