package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// monitoring subsystem.
type Metrics struct {
	CyclesTotal   prometheus.Counter
	CycleFailures prometheus.Counter
	CycleDuration prometheus.Histogram
	FieldsTracked prometheus.Gauge

	// Climate fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error,empty}
	FetchDuration prometheus.Histogram

	AlertsRaised  prometheus.Counter
	AlertsEvicted prometheus.Counter
}

// NewMetrics creates and registers all monitor metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agrorisk",
			Name:      "cycles_total",
			Help:      "Total orchestration cycles run.",
		}),
		CycleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agrorisk",
			Name:      "cycle_failures_total",
			Help:      "Total scheduler iterations that ended in a recovered failure.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agrorisk",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of a complete fetch-assess-update pass over all fields.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		FieldsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "agrorisk",
			Name:      "fields_tracked",
			Help:      "Number of fields currently in the registry.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agrorisk",
			Name:      "climate_fetch_total",
			Help:      "Climate API fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agrorisk",
			Name:      "climate_fetch_duration_seconds",
			Help:      "Climate API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		AlertsRaised: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agrorisk",
			Name:      "alerts_raised_total",
			Help:      "Total alerts appended to the alert log.",
		}),
		AlertsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "agrorisk",
			Name:      "alerts_evicted_total",
			Help:      "Total alerts dropped by FIFO trimming.",
		}),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleFailures,
		m.CycleDuration,
		m.FieldsTracked,
		m.FetchRequests,
		m.FetchDuration,
		m.AlertsRaised,
		m.AlertsEvicted,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		CyclesTotal:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agrorisk", Name: "cycles_total"}),
		CycleFailures: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agrorisk", Name: "cycle_failures_total"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "agrorisk", Name: "cycle_duration_seconds"}),
		FieldsTracked: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "agrorisk", Name: "fields_tracked"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "agrorisk", Name: "climate_fetch_total"}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "agrorisk", Name: "climate_fetch_duration_seconds"}),
		AlertsRaised:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agrorisk", Name: "alerts_raised_total"}),
		AlertsEvicted: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "agrorisk", Name: "alerts_evicted_total"}),
	}
}
