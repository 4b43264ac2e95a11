// Package admission maintains one budget tracker per entity and answers
// admission-control queries against them.
//
// # Overview
//
// The Registry is the primary interface. It lazily creates a tracker the
// first time an entity records spend or is checked, serializes access per
// entity, and periodically evicts trackers that no longer hold information
// relevant to future decisions.
//
// # Usage
//
//	cfg, _ := budget.NewConfig(time.Hour, time.Minute, 30*time.Second, 250)
//
//	registry, err := admission.NewRegistry(admission.RegistryConfig{
//	    Budget: cfg,
//	})
//
//	if registry.RecordSpend(ctx, "project-42", 1.75) {
//	    // over budget: reject, throttle, or alert - that is the caller's call
//	}
//
// # Eviction
//
// Sweep removes stale trackers. A tracker with a pending backoff deadline
// is never evicted, even when all of its buckets have aged out of the
// budgeting window. The Sweeper runs Sweep on a cron schedule.
//
// # Observability
//
// Metrics exposes Prometheus collectors for spend records, check results,
// state flips, evictions, and check latency. A nil Metrics disables all of
// them.
package admission
