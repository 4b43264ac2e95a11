package budget

import (
	"time"
)

// bucket aggregates all spend recorded within one grid cell.
type bucket struct {
	timestamp time.Time
	spent     float64
}

// Tracker tracks spent budget for a single entity.
//
// Spend is accumulated into a bounded, newest-first sequence of time
// buckets. RecordSpend and Check both recompute the over-budget state
// against the current time, subject to the hysteresis backoff described in
// the package documentation.
//
// A Tracker is not safe for concurrent use; the owning registry must
// serialize access per entity.
type Tracker struct {
	config *Config

	// exceedsBudget is the last computed over-budget state.
	exceedsBudget bool

	// backoffDeadline suppresses state changes while in the future.
	// The zero value means no backoff is pending.
	backoffDeadline time.Time

	// buckets is ordered newest-first with at most config.NumBuckets()
	// entries and strictly decreasing timestamps.
	buckets []bucket
}

// NewTracker creates a tracker governed by the given config.
// A new tracker starts under budget with no recorded spend and no backoff.
func NewTracker(config *Config) *Tracker {
	return &Tracker{
		config:  config,
		buckets: make([]bucket, 0, config.numBuckets),
	}
}

// RecordSpend adds spend for the current time and reports whether the
// entity now exceeds its budget.
//
// The amount is merged into the newest bucket when that bucket still covers
// the current grid cell; otherwise a new bucket is inserted at the front
// and the oldest bucket is dropped once the capacity bound is reached.
//
// Amounts are trusted to be non-negative; enforcing that is the caller's
// contract.
func (t *Tracker) RecordSpend(amount float64) bool {
	now := t.config.GridNow()

	if len(t.buckets) > 0 && !t.buckets[0].timestamp.Before(now) {
		// Still in the newest bucket's grid cell.
		t.buckets[0].spent += amount
	} else {
		if len(t.buckets) >= t.config.numBuckets {
			t.buckets = t.buckets[:len(t.buckets)-1]
		}
		t.buckets = append(t.buckets, bucket{})
		copy(t.buckets[1:], t.buckets[:len(t.buckets)-1])
		t.buckets[0] = bucket{timestamp: now, spent: amount}
	}

	return t.updateAggregatedState(now)
}

// Check reports whether the entity currently exceeds its budget without
// recording any spend. Like RecordSpend, it updates the internal hysteresis
// state.
func (t *Tracker) Check() bool {
	return t.updateAggregatedState(t.config.GridNow())
}

// WindowSpend returns the total spend within the budgeting window ending
// now. It bypasses the hysteresis state and does not mutate the tracker;
// use it for reporting, not for admission decisions.
func (t *Tracker) WindowSpend() float64 {
	return t.windowSpend(t.config.GridNow())
}

// IsStale reports whether the tracker holds no information relevant to
// future decisions: no pending backoff deadline and no bucket that would
// still count toward a sum computed at now. The owning registry uses this
// to decide eviction. A tracker with a pending backoff is never stale, even
// when all its buckets have aged out, because the backoff still governs
// upcoming state transitions.
func (t *Tracker) IsStale(now time.Time) bool {
	if !t.backoffDeadline.IsZero() && t.backoffDeadline.After(now) {
		return false
	}

	cutoff := now.Add(-t.config.budgetingWindow)
	for _, b := range t.buckets {
		if !b.timestamp.Before(cutoff) {
			return false
		}
	}
	return true
}

// updateAggregatedState recomputes the over-budget state at now, arming a
// backoff deadline on every state flip.
func (t *Tracker) updateAggregatedState(now time.Time) bool {
	if !t.backoffDeadline.IsZero() {
		if t.backoffDeadline.After(now) {
			// Locked in by the hysteresis guard.
			return t.exceedsBudget
		}
		t.backoffDeadline = time.Time{}
	}

	exceeds := t.windowSpend(now) > t.config.allowedBudget

	if exceeds != t.exceedsBudget {
		t.exceedsBudget = exceeds
		t.backoffDeadline = now.Add(t.config.backoffDuration)
	}

	return t.exceedsBudget
}

// windowSpend sums every bucket inside the window ending at now. Buckets
// older than the window are excluded from the sum but not evicted; eviction
// only happens through the capacity bound in RecordSpend.
func (t *Tracker) windowSpend(now time.Time) float64 {
	windowStart := now.Add(-t.config.budgetingWindow)

	var total float64
	for _, b := range t.buckets {
		// Inclusive lower bound: a bucket exactly at the window start counts.
		if !b.timestamp.Before(windowStart) {
			total += b.spent
		}
	}
	return total
}
