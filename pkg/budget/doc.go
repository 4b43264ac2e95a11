// Package budget implements per-entity rolling window budget tracking with
// hysteresis.
//
// # Overview
//
// A Tracker accumulates spend into discrete time buckets and answers one
// question: does this entity currently exceed its allowed budget? Spend is
// summed over a rolling window, and state flips are dampened with a backoff
// deadline so that bursty or near-threshold spend patterns do not cause
// rapid oscillation between "over" and "under" budget.
//
// # Buckets
//
// Timestamps are mapped onto a discrete grid spaced by the configured
// bucket width. All spend recorded within one grid cell merges into a
// single bucket, which bounds memory to the configured bucket count
// regardless of call frequency, at the cost of temporal resolution equal
// to the bucket width.
//
// # Hysteresis
//
// When the over-budget state flips, a backoff deadline is armed. Until it
// passes, both RecordSpend and Check return the locked-in state without
// recomputation. The deadline is checked lazily on each call; no timers or
// background goroutines are involved.
//
// # Usage
//
//	cfg, err := budget.NewConfig(10*time.Second, 5*time.Second, time.Second, 100)
//	if err != nil {
//	    // invalid window or bucket width
//	}
//
//	tracker := budget.NewTracker(cfg)
//
//	if tracker.RecordSpend(2.5) {
//	    // entity is over budget
//	}
//
// # Thread Safety
//
// Tracker is intended for single-writer access. The owning registry is
// responsible for synchronizing concurrent calls against the same entity.
// Config is immutable after construction and may be shared freely across
// trackers and goroutines.
package budget
