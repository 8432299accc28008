package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and the query API.
type Metrics struct {
	PassesTotal     prometheus.Counter
	RecordsIngested prometheus.Counter
	LinesDropped    prometheus.Counter
	IngestErrors    prometheus.Counter
	EmptyPasses     prometheus.Counter
	PassDuration    prometheus.Histogram
	StoreRecords    prometheus.Gauge
	PipelineRunning prometheus.Gauge

	// Query metrics.
	ProfileRequests   *prometheus.CounterVec // labels: outcome={ok,not_found}
	ZoneAlertRequests *prometheus.CounterVec // labels: outcome={ok,not_found,out_of_range,invalid}
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PassesTotal,
		m.RecordsIngested,
		m.LinesDropped,
		m.IngestErrors,
		m.EmptyPasses,
		m.PassDuration,
		m.StoreRecords,
		m.PipelineRunning,
		m.ProfileRequests,
		m.ZoneAlertRequests,
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
		PassesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crime_zone",
			Name:      "ingest_passes_total",
			Help:      "Total completed ingestion passes.",
		}),
		RecordsIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crime_zone",
			Name:      "records_ingested_total",
			Help:      "Total crime records written into the store.",
		}),
		LinesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crime_zone",
			Name:      "lines_dropped_total",
			Help:      "Total source lines dropped as noise during parsing.",
		}),
		IngestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crime_zone",
			Name:      "ingest_errors_total",
			Help:      "Total ingestion failures (unreadable source, publish errors).",
		}),
		EmptyPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crime_zone",
			Name:      "empty_passes_total",
			Help:      "Passes that produced zero records, a data-quality warning.",
		}),
		PassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crime_zone",
			Name:      "pass_duration_seconds",
			Help:      "Duration of a complete parse-and-swap ingestion pass.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		StoreRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crime_zone",
			Name:      "store_records",
			Help:      "Records in the current store snapshot.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crime_zone",
			Name:      "pipeline_running",
			Help:      "1 when the source-topic loop is active, 0 when shut down.",
		}),
		ProfileRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_zone",
			Name:      "profile_requests_total",
			Help:      "City-profile lookups by outcome.",
		}, []string{"outcome"}),
		ZoneAlertRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crime_zone",
			Name:      "zone_alert_requests_total",
			Help:      "Zone-alert resolutions by outcome.",
		}, []string{"outcome"}),
	}
}
