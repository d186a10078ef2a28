// Copyright (c) 2026 BookGod. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package scheduler runs periodic maintenance jobs on robfig/cron.

Each run gets its own timeout-bound context, is logged with its outcome and
duration, and is counted in the scheduler metrics. Overlapping runs of the
same job are skipped.
*/
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/taibuivan/bookgod/internal/platform/metrics"
)

// JobFunc is a unit of scheduled work.
type JobFunc func(ctx context.Context) error

// Scheduler wraps a cron runner with logging and metrics.
type Scheduler struct {
	cron       *cron.Cron
	logger     *slog.Logger
	jobTimeout time.Duration
}

// New creates a scheduler whose job runs are bounded by jobTimeout.
func New(logger *slog.Logger, jobTimeout time.Duration) *Scheduler {
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))

	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLogger),
			cron.SkipIfStillRunning(cronLogger),
		)),
		logger:     logger,
		jobTimeout: jobTimeout,
	}
}

// Register schedules job under name. spec uses cron syntax or descriptors
// such as "@daily" and "@every 1h".
func (scheduler *Scheduler) Register(name, spec string, job JobFunc) error {
	_, err := scheduler.cron.AddFunc(spec, func() {
		scheduler.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q for job %s: %w", spec, name, err)
	}

	scheduler.logger.Info("scheduler_job_registered", slog.String("job", name), slog.String("schedule", spec))
	return nil
}

func (scheduler *Scheduler) run(name string, job JobFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), scheduler.jobTimeout)
	defer cancel()

	start := time.Now()
	err := job(ctx)
	duration := time.Since(start)

	metrics.RecordJobRun(name, duration, err == nil)

	if err != nil {
		scheduler.logger.Error("scheduler_job_failed",
			slog.String("job", name),
			slog.Int64("duration_ms", duration.Milliseconds()),
			slog.Any("error", err),
		)
		return
	}

	scheduler.logger.Info("scheduler_job_finished",
		slog.String("job", name),
		slog.Int64("duration_ms", duration.Milliseconds()),
	)
}

// Start begins running jobs in the background.
func (scheduler *Scheduler) Start() {
	scheduler.cron.Start()
}

// Stop prevents new runs and waits for running jobs, up to ctx's deadline.
func (scheduler *Scheduler) Stop(ctx context.Context) error {
	done := scheduler.cron.Stop()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler: stop interrupted: %w", ctx.Err())
	}
}
