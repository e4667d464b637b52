package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ELT job.
type Metrics struct {
	RunsTotal     *prometheus.CounterVec // labels: outcome={success,fetch_error,not_found,schema_error,load_error,quality_failure,error}
	StageDuration *prometheus.HistogramVec
	RowsLoaded    prometheus.Counter

	QualityViolations *prometheus.CounterVec // labels: check={completeness,not_null,range}
	LastSuccess       prometheus.Gauge       // unix timestamp of the last successful run
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aq_elt",
			Name:      "runs_total",
			Help:      "Completed pipeline runs by outcome.",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aq_elt",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		RowsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aq_elt",
			Name:      "rows_loaded_total",
			Help:      "Total readings upserted into the analytical table.",
		}),
		QualityViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aq_elt",
			Name:      "quality_violations_total",
			Help:      "Data-quality violations by check.",
		}, []string{"check"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aq_elt",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful run, 0 until one completes.",
		}),
	}

	prometheus.MustRegister(
		m.RunsTotal,
		m.StageDuration,
		m.RowsLoaded,
		m.QualityViolations,
		m.LastSuccess,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		RunsTotal:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "aq_elt", Name: "runs_total"}, []string{"outcome"}),
		StageDuration:     prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "aq_elt", Name: "stage_duration_seconds"}, []string{"stage"}),
		RowsLoaded:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "aq_elt", Name: "rows_loaded_total"}),
		QualityViolations: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "aq_elt", Name: "quality_violations_total"}, []string{"check"}),
		LastSuccess:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "aq_elt", Name: "last_success_timestamp_seconds"}),
	}
}
