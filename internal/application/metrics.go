package application

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch results recorded by the aggregator.
const (
	fetchResultSuccess   = "success"
	fetchResultError     = "error"
	fetchResultSkipped   = "skipped"
	fetchResultDiscarded = "discarded"
)

// Metrics holds the Prometheus collectors for the earnings views.
type Metrics struct {
	fetches        *prometheus.CounterVec
	fetchLatency   prometheus.Histogram
	activeSessions prometheus.Gauge
	diagnostics    *prometheus.CounterVec
}

var (
	defaultMetricsOnce sync.Once
	defaultMetrics     *Metrics
)

// DefaultMetrics returns collectors registered once on the default registry.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// NewMetrics registers a fresh set of collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "earnings_fetch_total",
			Help: "Payment statistics fetches by result",
		}, []string{"result"}),
		fetchLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "earnings_fetch_duration_seconds",
			Help:    "Time taken to query and reduce a guide's bookings",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "earnings_active_sessions",
			Help: "Number of sessions holding an earnings aggregate",
		}),
		diagnostics: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storage_diagnostic_runs_total",
			Help: "Storage diagnostic runs by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) observeFetch(result string, started time.Time) {
	m.fetches.WithLabelValues(result).Inc()
	if result != fetchResultSkipped {
		m.fetchLatency.Observe(time.Since(started).Seconds())
	}
}
