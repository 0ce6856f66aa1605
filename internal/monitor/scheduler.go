package monitor

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler invokes the orchestrator on a fixed interval plus a uniform random
// jitter, forever. A failing cycle is logged and the loop continues: one
// upstream outage must not end monitoring permanently.
type Scheduler struct {
	orchestrator *Orchestrator
	interval     time.Duration
	jitter       time.Duration
	clock        clockwork.Clock
	logger       *slog.Logger
}

func NewScheduler(orchestrator *Orchestrator, interval, jitter time.Duration, clock clockwork.Clock, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		interval:     interval,
		jitter:       jitter,
		clock:        clock,
		logger:       logger,
	}
}

// Run blocks until ctx is cancelled. Call it from a dedicated goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler starting", "interval", s.interval, "jitter", s.jitter)

	for {
		s.runCycle(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("scheduler shutting down")
			return
		case <-s.clock.After(s.delay()):
		}
	}
}

// runCycle wraps one iteration so a panicking cycle is contained to that
// iteration.
func (s *Scheduler) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.orchestrator.metrics.CycleFailures.Inc()
			s.logger.Error("cycle failed", "panic", r)
		}
	}()

	s.orchestrator.RunCycle(ctx)
}

func (s *Scheduler) delay() time.Duration {
	if s.jitter <= 0 {
		return s.interval
	}
	return s.interval + time.Duration(rand.Int63n(int64(s.jitter)+1))
}
