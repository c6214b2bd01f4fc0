package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// refresh pipeline.
type Metrics struct {
	RefreshCycles *prometheus.CounterVec // labels: view, outcome={updated,no_data,kept,discarded}
	SourceFetches *prometheus.CounterVec // labels: view, source={primary,fallback}, outcome={success,error,empty}
	FetchDuration *prometheus.HistogramVec
	RowsFetched   *prometheus.HistogramVec
	PollersActive prometheus.Gauge
}

// NewMetrics creates and registers all refresh metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RefreshCycles,
		m.SourceFetches,
		m.FetchDuration,
		m.RowsFetched,
		m.PollersActive,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RefreshCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "traffic_dash",
			Name:      "refresh_cycles_total",
			Help:      "Refresh cycles by view and outcome.",
		}, []string{"view", "outcome"}),
		SourceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "traffic_dash",
			Name:      "source_fetches_total",
			Help:      "Source fetch attempts by view, source, and outcome.",
		}, []string{"view", "source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "traffic_dash",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single source fetch.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),
		RowsFetched: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "traffic_dash",
			Name:      "rows_fetched",
			Help:      "Rows returned per successful fetch.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"view"}),
		PollersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "traffic_dash",
			Name:      "pollers_active",
			Help:      "Number of view pollers currently running.",
		}),
	}
}
