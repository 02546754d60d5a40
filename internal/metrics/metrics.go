// Package metrics exposes reconciliation counters and timings to Prometheus.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "catalogmirror"

// Metrics holds the collectors recorded by the reconciler.
type Metrics struct {
	cycleDuration  prometheus.Histogram
	cyclesTotal    *prometheus.CounterVec
	fetchesTotal   *prometheus.CounterVec
	retryRounds    *prometheus.CounterVec
	mutationsTotal *prometheus.CounterVec
	mirrorProducts prometheus.Gauge
	lastCycle      prometheus.Gauge
}

// New creates the collectors and registers them with reg.
// A nil reg uses the default Prometheus registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall-clock duration of reconciliation cycles",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}),
		cyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed reconciliation cycles by outcome",
		}, []string{"outcome"}),
		fetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Remote fetches by kind and result",
		}, []string{"kind", "result"}),
		retryRounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retry_rounds_total",
			Help:      "Retry rounds started after failed fetches",
		}, []string{"phase"}),
		mutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Rows touched in the mirror by operation",
		}, []string{"op"}),
		mirrorProducts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mirror_products",
			Help:      "Products in the mirror after the last cycle",
		}),
		lastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_cycle_timestamp_seconds",
			Help:      "Unix time the last cycle completed",
		}),
	}

	reg.MustRegister(
		m.cycleDuration,
		m.cyclesTotal,
		m.fetchesTotal,
		m.retryRounds,
		m.mutationsTotal,
		m.mirrorProducts,
		m.lastCycle,
	)
	return m
}

// ObserveCycle records a finished cycle.
func (m *Metrics) ObserveCycle(d time.Duration, structural bool, end time.Time) {
	if m == nil {
		return
	}
	m.cycleDuration.Observe(d.Seconds())
	outcome := "changed"
	if structural {
		outcome = "added_removed"
	}
	m.cyclesTotal.WithLabelValues(outcome).Inc()
	m.lastCycle.Set(float64(end.Unix()))
}

// CycleFailed records a cycle aborted by a store failure.
func (m *Metrics) CycleFailed() {
	if m == nil {
		return
	}
	m.cyclesTotal.WithLabelValues("failed").Inc()
}

// Fetch records one remote fetch.
func (m *Metrics) Fetch(kind string, ok bool) {
	if m == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.fetchesTotal.WithLabelValues(kind, result).Inc()
}

// RetryRound records a retry round for phase.
func (m *Metrics) RetryRound(phase string) {
	if m == nil {
		return
	}
	m.retryRounds.WithLabelValues(phase).Inc()
}

// Mutations records rows touched by op.
func (m *Metrics) Mutations(op string, rows int64) {
	if m == nil || rows <= 0 {
		return
	}
	m.mutationsTotal.WithLabelValues(op).Add(float64(rows))
}

// MirrorSize records the mirror row count.
func (m *Metrics) MirrorSize(n int64) {
	if m == nil {
		return
	}
	m.mirrorProducts.Set(float64(n))
}
