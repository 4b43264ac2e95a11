package admission

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the admission registry.
type Metrics struct {
	spendRecords  *prometheus.CounterVec
	checks        *prometheus.CounterVec
	stateFlips    *prometheus.CounterVec
	windowSpend   *prometheus.GaugeVec
	activeTracker prometheus.Gauge
	evictions     prometheus.Counter
	checkDuration *prometheus.HistogramVec
}

// NewMetrics creates admission metrics registered against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		spendRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendgate_admission_spend_records_total",
				Help: "Total number of spend events recorded",
			},
			[]string{"entity", "result"},
		),

		checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendgate_admission_checks_total",
				Help: "Total number of budget checks performed",
			},
			[]string{"entity", "result"},
		),

		stateFlips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "spendgate_admission_state_flips_total",
				Help: "Total number of over/under budget state transitions",
			},
			[]string{"entity", "direction"},
		),

		windowSpend: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "spendgate_admission_window_spend",
				Help: "Spend currently inside the budgeting window",
			},
			[]string{"entity"},
		),

		activeTracker: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "spendgate_admission_active_trackers",
				Help: "Current number of live budget trackers",
			},
		),

		evictions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "spendgate_admission_evictions_total",
				Help: "Total number of stale trackers evicted",
			},
		),

		checkDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "spendgate_admission_operation_duration_seconds",
				Help:    "Duration of admission operations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"operation"},
		),
	}
}

func (m *Metrics) observeSpend(entity string, exceeded bool, windowSpend float64) {
	m.spendRecords.WithLabelValues(entity, resultLabel(exceeded)).Inc()
	m.windowSpend.WithLabelValues(entity).Set(windowSpend)
}

func (m *Metrics) observeCheck(entity string, exceeded bool) {
	m.checks.WithLabelValues(entity, resultLabel(exceeded)).Inc()
}

func (m *Metrics) observeFlip(entity string, exceeded bool) {
	direction := "under_to_over"
	if !exceeded {
		direction = "over_to_under"
	}
	m.stateFlips.WithLabelValues(entity, direction).Inc()
}

func (m *Metrics) observeEviction(entity string) {
	m.evictions.Inc()
	m.windowSpend.DeleteLabelValues(entity)
}

func (m *Metrics) setActiveTrackers(n int) {
	m.activeTracker.Set(float64(n))
}

func (m *Metrics) observeDuration(operation string, d time.Duration) {
	m.checkDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func resultLabel(exceeded bool) string {
	if exceeded {
		return "over_budget"
	}
	return "allowed"
}
