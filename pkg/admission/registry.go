package admission

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"spendgate-hq/spendgate/pkg/budget"
	"spendgate-hq/spendgate/pkg/clock"
)

// SpendJournal receives every recorded spend event together with the
// admission decision. Implementations must be safe for concurrent use.
type SpendJournal interface {
	Append(ctx context.Context, entity string, amount float64, exceeded bool) error
}

// Registry owns one budget tracker per entity.
//
// Trackers are created lazily on first use and share a single immutable
// budget config. All tracker access is serialized per entity, satisfying
// the trackers' single-writer contract.
type Registry struct {
	config  *budget.Config
	clk     clock.Clock
	metrics *Metrics
	journal SpendJournal
	logger  *slog.Logger

	mu       sync.Mutex
	trackers map[string]*entry
}

// entry pairs a tracker with the lock that serializes access to it.
type entry struct {
	mu           sync.Mutex
	tracker      *budget.Tracker
	lastExceeded bool
}

// RegistryConfig contains configuration for a Registry.
type RegistryConfig struct {
	// Budget is the shared budgeting configuration. Required.
	Budget *budget.Config

	// Metrics enables Prometheus instrumentation. Optional.
	Metrics *Metrics

	// Journal receives spend events for auditing. Appends are best
	// effort: failures are logged, never surfaced to callers. Optional.
	Journal SpendJournal

	// Logger defaults to slog.Default.
	Logger *slog.Logger
}

// NewRegistry creates a registry with the given configuration.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.Budget == nil {
		return nil, fmt.Errorf("budget config is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		config:   cfg.Budget,
		clk:      cfg.Budget.Clock(),
		metrics:  cfg.Metrics,
		journal:  cfg.Journal,
		logger:   logger.With("component", "admission.registry"),
		trackers: make(map[string]*entry),
	}, nil
}

// RecordSpend records spend for an entity and reports whether the entity
// now exceeds its budget. The tracker is created on first use.
func (r *Registry) RecordSpend(ctx context.Context, entity string, amount float64) bool {
	start := r.clk.Now()
	e := r.entryFor(entity)

	e.mu.Lock()
	exceeded := e.tracker.RecordSpend(amount)
	spend := e.tracker.WindowSpend()
	flipped := exceeded != e.lastExceeded
	e.lastExceeded = exceeded
	e.mu.Unlock()

	if r.metrics != nil {
		r.metrics.observeSpend(entity, exceeded, spend)
		if flipped {
			r.metrics.observeFlip(entity, exceeded)
		}
		r.metrics.observeDuration("record_spend", r.clk.Since(start))
	}

	if r.journal != nil {
		if err := r.journal.Append(ctx, entity, amount, exceeded); err != nil {
			r.logger.Error("journal append failed", "entity", entity, "error", err)
		}
	}

	return exceeded
}

// Check reports whether an entity currently exceeds its budget without
// recording spend. Like RecordSpend, it creates the tracker on first use.
func (r *Registry) Check(entity string) bool {
	start := r.clk.Now()
	e := r.entryFor(entity)

	e.mu.Lock()
	exceeded := e.tracker.Check()
	flipped := exceeded != e.lastExceeded
	e.lastExceeded = exceeded
	e.mu.Unlock()

	if r.metrics != nil {
		r.metrics.observeCheck(entity, exceeded)
		if flipped {
			r.metrics.observeFlip(entity, exceeded)
		}
		r.metrics.observeDuration("check", r.clk.Since(start))
	}

	return exceeded
}

// WindowSpend returns the spend currently inside the budgeting window for
// an entity, or zero when no tracker exists. It never creates a tracker.
func (r *Registry) WindowSpend(entity string) float64 {
	r.mu.Lock()
	e, ok := r.trackers[entity]
	r.mu.Unlock()
	if !ok {
		return 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracker.WindowSpend()
}

// Sweep evicts every tracker that is stale at now and returns the number
// evicted. Trackers with a pending backoff survive the sweep regardless of
// bucket age.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for entity, e := range r.trackers {
		e.mu.Lock()
		stale := e.tracker.IsStale(now)
		e.mu.Unlock()

		if stale {
			delete(r.trackers, entity)
			evicted++
			if r.metrics != nil {
				r.metrics.observeEviction(entity)
			}
		}
	}

	if r.metrics != nil {
		r.metrics.setActiveTrackers(len(r.trackers))
	}

	if evicted > 0 {
		r.logger.Debug("swept stale trackers", "evicted", evicted, "remaining", len(r.trackers))
	}

	return evicted
}

// Len returns the number of live trackers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.trackers)
}

// entryFor returns the entry for an entity, creating it if needed.
func (r *Registry) entryFor(entity string) *entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.trackers[entity]
	if !ok {
		e = &entry{tracker: budget.NewTracker(r.config)}
		r.trackers[entity] = e
		if r.metrics != nil {
			r.metrics.setActiveTrackers(len(r.trackers))
		}
	}
	return e
}
