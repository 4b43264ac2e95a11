package admission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"spendgate-hq/spendgate/pkg/clock"
)

// Sweeper evicts stale trackers from a registry on a cron schedule.
//
// Common cron expressions:
//   - "* * * * *"     - Every minute
//   - "*/5 * * * *"   - Every 5 minutes
//   - "0 * * * *"     - Hourly
type Sweeper struct {
	registry *Registry
	schedule string
	clk      clock.Clock
	cron     *cron.Cron
	logger   *slog.Logger
	mu       sync.Mutex
	running  bool
}

// NewSweeper creates a sweeper that runs registry.Sweep on the given
// standard cron schedule. An empty schedule disables the sweeper.
func NewSweeper(registry *Registry, schedule string) *Sweeper {
	return &Sweeper{
		registry: registry,
		schedule: schedule,
		clk:      registry.clk,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "admission.sweeper"),
	}
}

// Start begins scheduled sweeping. It returns once the schedule is
// installed; sweeps run on the cron's own goroutine until the context is
// cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("sweep schedule not configured, skipping sweeper")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, s.runSweep); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("sweeper started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSweep executes one sweep cycle.
func (s *Sweeper) runSweep() {
	evicted := s.registry.Sweep(s.clk.Now())

	if evicted > 0 {
		s.logger.Info("sweep completed", "evicted", evicted, "remaining", s.registry.Len())
	} else {
		s.logger.Debug("sweep completed, nothing evicted")
	}
}

// Stop stops the sweeper and waits for a running sweep to complete.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("sweeper stopped")
	}
}

// IsRunning returns true if the sweeper is running.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled sweep time, or nil when no sweep is
// scheduled.
func (s *Sweeper) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
