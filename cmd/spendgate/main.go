// Spendgate is an admission gate for per-entity spend budgets.
//
// It tracks spend per entity over a rolling time window and reports, on
// every recorded spend, whether the entity has exceeded its allowed
// budget. Decisions are damped by a backoff interval so entities do not
// flap between blocked and unblocked at the budget boundary.
//
// Usage:
//
//	# Start the admission server with default configuration
//	spendgate run
//
//	# Start with a custom configuration file
//	spendgate run --config /path/to/config.yaml
//
//	# Validate a configuration file without starting
//	spendgate validate --config /path/to/config.yaml
//
//	# Show version information
//	spendgate version
package main

func main() {
	Execute()
}
