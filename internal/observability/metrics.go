package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a
// generator run.
type Metrics struct {
	RowsRead           prometheus.Counter
	FeaturesEmitted    prometheus.Counter
	CoordinateFailures prometheus.Counter
	AttendanceUnparsed prometheus.Counter
	LoadErrors         *prometheus.CounterVec // labels: sink
	RunDuration        prometheus.Histogram
	LastSuccess        prometheus.Gauge

	registry *prometheus.Registry
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "festmap",
			Name:      "rows_read_total",
			Help:      "Total data rows read from the input sheet.",
		}),
		FeaturesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "festmap",
			Name:      "features_emitted_total",
			Help:      "Total GeoJSON features produced.",
		}),
		CoordinateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "festmap",
			Name:      "coordinate_failures_total",
			Help:      "Rows whose coordinates could not be parsed.",
		}),
		AttendanceUnparsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "festmap",
			Name:      "attendance_unparsed_total",
			Help:      "Rows without a numeric attendance estimate.",
		}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "festmap",
			Name:      "load_errors_total",
			Help:      "Failed artifact loads by sink.",
		}, []string{"sink"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "festmap",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete extract-transform-load run.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "festmap",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RowsRead,
		m.FeaturesEmitted,
		m.CoordinateFailures,
		m.AttendanceUnparsed,
		m.LoadErrors,
		m.RunDuration,
		m.LastSuccess,
	}
}

// NewMetrics creates and registers all generator metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(m.collectors()...)
	return m
}

// WriteTextfile writes the current metric values in the node_exporter
// textfile format. Batch runs use it since nothing scrapes them.
func (m *Metrics) WriteTextfile(path string) error {
	var g prometheus.Gatherer = prometheus.DefaultGatherer
	if m.registry != nil {
		g = m.registry
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile %q: %w", path, err)
	}
	return nil
}
