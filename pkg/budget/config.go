package budget

import (
	"fmt"
	"time"

	"spendgate-hq/spendgate/pkg/clock"
)

// Config governs budgeting and bucketing for a set of trackers.
//
// A Config is immutable after construction. One Config is typically shared
// by reference across every tracker of a registry; there is no mutation
// path, so no locking is needed.
type Config struct {
	budgetingWindow time.Duration
	bucketWidth     time.Duration
	backoffDuration time.Duration
	allowedBudget   float64
	numBuckets      int
	clk             clock.Clock
}

// NewConfig creates a budgeting configuration.
//
// Parameters:
//   - budgetingWindow: rolling duration over which spend is summed
//   - bucketWidth: granularity of the time bucket grid
//   - backoffDuration: minimum dwell time after an over/under budget flip
//   - allowedBudget: ceiling; window spend strictly above this is over budget
//
// The number of retained buckets is derived as budgetingWindow/bucketWidth
// rounded up. NewConfig rejects non-positive windows and bucket widths, and
// negative backoff durations; a degenerate grid would make bucket and
// window arithmetic meaningless at runtime.
func NewConfig(budgetingWindow, bucketWidth, backoffDuration time.Duration, allowedBudget float64) (*Config, error) {
	if bucketWidth <= 0 {
		return nil, fmt.Errorf("bucket width must be positive, got %v", bucketWidth)
	}
	if budgetingWindow <= 0 {
		return nil, fmt.Errorf("budgeting window must be positive, got %v", budgetingWindow)
	}
	if backoffDuration < 0 {
		return nil, fmt.Errorf("backoff duration must not be negative, got %v", backoffDuration)
	}

	// Ceiling division so a partial trailing bucket is still retained.
	numBuckets := int((budgetingWindow + bucketWidth - 1) / bucketWidth)

	return &Config{
		budgetingWindow: budgetingWindow,
		bucketWidth:     bucketWidth,
		backoffDuration: backoffDuration,
		allowedBudget:   allowedBudget,
		numBuckets:      numBuckets,
		clk:             clock.Real(),
	}, nil
}

// WithClock returns a copy of the config that reads time from clk.
// Tests use this to drive the tracker with a mock clock.
func (c *Config) WithClock(clk clock.Clock) *Config {
	cp := *c
	cp.clk = clk
	return &cp
}

// WithNumBuckets returns a copy of the config retaining at most n buckets,
// overriding the derived count. n must be positive.
func (c *Config) WithNumBuckets(n int) (*Config, error) {
	if n <= 0 {
		return nil, fmt.Errorf("bucket count must be positive, got %d", n)
	}
	cp := *c
	cp.numBuckets = n
	return &cp, nil
}

// BudgetingWindow returns the rolling window over which spend is summed.
func (c *Config) BudgetingWindow() time.Duration {
	return c.budgetingWindow
}

// BucketWidth returns the granularity of the time bucket grid.
func (c *Config) BucketWidth() time.Duration {
	return c.bucketWidth
}

// BackoffDuration returns the minimum dwell time after a state flip.
func (c *Config) BackoffDuration() time.Duration {
	return c.backoffDuration
}

// AllowedBudget returns the budget ceiling.
func (c *Config) AllowedBudget() float64 {
	return c.allowedBudget
}

// NumBuckets returns the maximum number of retained buckets.
func (c *Config) NumBuckets() int {
	return c.numBuckets
}

// Clock returns the time source used by this config's trackers.
func (c *Config) Clock() clock.Clock {
	return c.clk
}

// GridNow maps the current time onto the bucket grid. The grid uses
// round-to-nearest rather than flooring so that a spend event lands in the
// grid cell its timestamp is closest to.
func (c *Config) GridNow() time.Time {
	return c.clk.Now().Round(c.bucketWidth)
}
