// Package scheduler drives the periodic batch passes.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"chorewheel/internal/absence"
	"chorewheel/internal/clock"
	"chorewheel/internal/penalty"
	"chorewheel/internal/rotation"
)

const defaultInterval = time.Minute

// Scheduler runs rotation generation, penalty escalation, and absence
// redistribution on a fixed interval. All three passes in one tick share a
// single clock reading, so a tick spanning midnight cannot disagree with
// itself about what "today" is.
type Scheduler struct {
	mu       sync.RWMutex
	rotation *rotation.Generator
	penalty  *penalty.Escalator
	absence  *absence.Redistributor
	clock    clock.Clock
	logger   *slog.Logger
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(rot *rotation.Generator, pen *penalty.Escalator, abs *absence.Redistributor, clk clock.Clock, logger *slog.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Scheduler{
		rotation: rot,
		penalty:  pen,
		absence:  abs,
		clock:    clk,
		logger:   logger,
		interval: interval,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Tick runs one full pass: rotations, then penalties, then redistribution.
// The passes are independent; each collects its own per-item errors, so a
// failure in one never blocks the next.
func (s *Scheduler) Tick() {
	now := s.clock.Now()

	rotResult := s.rotation.Run(now)
	penResult := s.penalty.Run(now)
	absResult := s.absence.Run(now)

	if n := len(rotResult.Errors) + len(penResult.Errors) + len(absResult.Errors); n > 0 {
		s.logger.Warn("scheduled pass completed with errors",
			"rotation_errors", len(rotResult.Errors),
			"penalty_errors", len(penResult.Errors),
			"absence_errors", len(absResult.Errors))
	}
}
