// Package jobs runs the background work of the API: the periodic sweep that
// revokes lapsed premium subscriptions.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// SweepLockKey is the lock name shared by every replica running the sweep.
const SweepLockKey = "premium-expiry-sweep"

// Sweeper revokes premium from users whose subscription has lapsed.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int64, error)
}

// Scheduler runs the expiry sweep on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	locker  Locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// NewScheduler builds a Scheduler. locker may be nil on a single replica.
// A panicking run is recovered and logged by the cron chain.
func NewScheduler(sweeper Sweeper, locker Locker, lockTTL time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
		sweeper: sweeper,
		locker:  locker,
		lockTTL: lockTTL,
		logger:  logger,
	}
}

// Start registers the sweep under spec and starts the scheduler.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunSweep(context.Background()) }); err != nil {
		return fmt.Errorf("jobs.Scheduler.Start: invalid schedule %q: %w", spec, err)
	}
	s.logger.Info("scheduled premium expiry sweep", "schedule", spec)
	s.cron.Start()
	return nil
}

// Stop stops scheduling. The returned context is done once a running sweep finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// RunSweep performs one sweep, skipping it when another replica holds the lock.
// It reports whether the sweep ran.
func (s *Scheduler) RunSweep(ctx context.Context) bool {
	if s.lockTTL > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.lockTTL)
		defer cancel()
	}

	if s.locker != nil {
		release, ok, err := s.locker.TryLock(ctx, SweepLockKey, s.lockTTL)
		if err != nil {
			s.logger.ErrorContext(ctx, "sweep lock failed", "error", err)
			return false
		}
		if !ok {
			s.logger.DebugContext(ctx, "sweep skipped; lock held elsewhere")
			return false
		}
		defer release()
	}

	start := time.Now()
	n, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "premium expiry sweep failed", "error", err)
		return true
	}
	s.logger.InfoContext(ctx, "premium expiry sweep finished", "revoked", n, "duration_ms", time.Since(start).Milliseconds())
	return true
}
