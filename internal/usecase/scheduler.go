package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"NewsSentry/internal/ports"
)

// Scheduler binds the orchestrator to a periodic driver. Each tick runs one
// cycle with a bounded context so a wedged cycle cannot outlive the next
// tick by much.
type Scheduler struct {
	driver       ports.Scheduler
	orchestrator *Orchestrator
	cycleTimeout time.Duration
	logger       *slog.Logger
}

// NewScheduler wires the periodic driver and the orchestrator.
func NewScheduler(driver ports.Scheduler, orchestrator *Orchestrator, cycleTimeout time.Duration, logger *slog.Logger) *Scheduler {
	if cycleTimeout <= 0 {
		cycleTimeout = 25 * time.Minute
	}
	if logger != nil {
		logger = logger.With("component", "cycle-scheduler")
	}
	return &Scheduler{
		driver:       driver,
		orchestrator: orchestrator,
		cycleTimeout: cycleTimeout,
		logger:       logger,
	}
}

// Start begins periodic cycle execution until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	job := func(now time.Time) {
		cycleCtx, cancel := context.WithTimeout(ctx, s.cycleTimeout)
		defer cancel()

		outcome := s.orchestrator.RunCycle(cycleCtx)
		if outcome.Err != nil && s.logger != nil {
			s.logger.Error("cycle ended with error",
				"outcome", string(outcome.Kind), "attempts", outcome.Attempts, "error", outcome.Err)
		}
	}

	if err := s.driver.Start(ctx, job); err != nil {
		return fmt.Errorf("start cycle driver: %w", err)
	}
	return nil
}

// Stop halts the driver and waits for an in-flight cycle, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	return s.driver.Stop(ctx)
}
