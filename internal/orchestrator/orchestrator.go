// Package orchestrator sequences one batch: every enabled job, in
// configuration order, strictly one at a time.
package orchestrator

import (
	"context"
	"time"

	"backsync/internal/config"
	"backsync/internal/model"
	"backsync/internal/status"

	"go.uber.org/zap"
)

// JobRunner attempts one job and always yields a result.
type JobRunner interface {
	Run(ctx context.Context, job config.JobSpec) model.RunResult
}

// Notifier delivers the failure summary for a batch.
type Notifier interface {
	NotifyFailures(ctx context.Context, failed []model.RunResult) error
}

// HistoryRecorder appends one executed result to the audit trail.
type HistoryRecorder interface {
	Append(result model.RunResult) error
}

type Orchestrator struct {
	jobs     []config.JobSpec
	runner   JobRunner
	store    *status.Store
	notifier Notifier
	history  HistoryRecorder
	log      *zap.Logger
}

// New wires a batch. history may be nil when no audit store is available.
func New(jobs []config.JobSpec, runner JobRunner, store *status.Store, notifier Notifier, history HistoryRecorder, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     jobs,
		runner:   runner,
		store:    store,
		notifier: notifier,
		history:  history,
		log:      log,
	}
}

// RunBatch attempts all enabled jobs once and reports whether every one of
// them succeeded; that bool becomes the process exit status. Job failures
// are aggregated, not propagated: only the per-job results and the final
// counters leave this function.
func (o *Orchestrator) RunBatch(ctx context.Context) bool {
	o.log.Info("starting backup sync run", zap.Int("configured_jobs", len(o.jobs)))

	batchStart := time.Now()
	o.store.Load()

	var successful, failed []model.RunResult
	for _, job := range o.jobs {
		if !job.IsEnabled() {
			o.log.Info("skipping disabled job", zap.String("job", job.Name))
			continue
		}

		result := o.runner.Run(ctx, job)
		o.store.RecordRun(result)

		if o.history != nil {
			if err := o.history.Append(result); err != nil {
				o.log.Warn("failed to save history", zap.Error(err))
			}
		}

		if result.Success {
			successful = append(successful, result)
		} else {
			failed = append(failed, result)
		}
	}

	o.store.FinalizeRun(batchStart, len(successful), len(failed))
	if err := o.store.Persist(); err != nil {
		o.log.Error("failed to save status", zap.Error(err))
	}

	if len(failed) > 0 {
		if err := o.notifier.NotifyFailures(ctx, failed); err != nil {
			o.log.Error("failed to send notification email", zap.Error(err))
		}
	}

	o.log.Info("backup sync completed",
		zap.Float64("duration_s", time.Since(batchStart).Seconds()),
		zap.Int("successful", len(successful)),
		zap.Int("failed", len(failed)))

	return len(failed) == 0
}
