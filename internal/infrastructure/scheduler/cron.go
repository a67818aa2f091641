// Package scheduler drives the periodic ingestion cycle.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"NewsSentry/internal/ports"
)

// CronScheduler fires the cycle job on a fixed interval.
type CronScheduler struct {
	interval time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler with the given cycle interval.
func NewCronScheduler(interval time.Duration, logger *slog.Logger) *CronScheduler {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	if logger != nil {
		logger = logger.With("component", "scheduler")
	}
	return &CronScheduler{
		interval: interval,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start registers the job and begins ticking. The job also runs once
// immediately so a fresh deployment does not wait a full interval.
func (s *CronScheduler) Start(ctx context.Context, job func(now time.Time)) error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { job(time.Now()) }); err != nil {
		return fmt.Errorf("schedule %q: %w", spec, err)
	}

	s.cron.Start()
	if s.logger != nil {
		s.logger.Info("scheduler started", "interval", s.interval.String())
	}

	go job(time.Now())
	return nil
}

// Stop halts scheduling and waits for a running job, bounded by ctx.
func (s *CronScheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
