// Package scheduler triggers maintenance runs on a cron schedule inside cmd/server.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/boatjones/quant-lab/internal/feature/maintenance/domain/entity"
	"github.com/boatjones/quant-lab/internal/feature/maintenance/usecase"
)

// Runner starts one maintenance run.
type Runner interface {
	Run(ctx context.Context, opts usecase.RunOptions) (entity.Report, error)
}

// Scheduler handles periodic maintenance runs.
type Scheduler struct {
	runner  Runner
	cron    *cron.Cron
	timeout time.Duration
	log     *slog.Logger
}

// New creates a scheduler evaluating schedules in loc. A run still in progress when the next
// tick fires makes that tick a no-op.
func New(runner Runner, loc *time.Location, timeout time.Duration) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	log := slog.With("component", "scheduler")
	return &Scheduler{
		runner:  runner,
		timeout: timeout,
		log:     log,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger{log}), cron.SkipIfStillRunning(cronLogger{log})),
		),
	}
}

// Start registers spec (standard five-field cron) and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("maintenance scheduler started", "schedule", spec)
	return nil
}

// Stop stops scheduling and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("maintenance run still in progress at shutdown")
	}
}

// Next returns the next activation time, or zero when nothing is scheduled.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.log.Info("starting scheduled maintenance run")
	rep, err := s.runner.Run(ctx, usecase.RunOptions{})
	switch {
	case errors.Is(err, usecase.ErrRunInProgress):
		s.log.Warn("skipped scheduled run, another run is in progress")
	case err != nil:
		s.log.Error("scheduled maintenance run failed", "run_id", rep.RunID, "error", err)
	default:
		s.log.Info("scheduled maintenance run completed", "run_id", rep.RunID,
			"duration", rep.FinishedAt.Sub(rep.StartedAt))
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
