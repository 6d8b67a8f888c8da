package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges shared by
// both batch jobs. Each job only touches the subset relevant to it.
type Metrics struct {
	JobRunning prometheus.Gauge

	// AQI update metrics.
	ZonesUpdated     prometheus.Counter
	ZonesFailed      prometheus.Counter
	ProviderRequests *prometheus.CounterVec   // labels: provider={primary,secondary}, outcome={success,empty,error}
	FetchDuration    *prometheus.HistogramVec // labels: provider={primary,secondary}

	// Recommendation generation metrics.
	GenerationRequests *prometheus.CounterVec // labels: outcome={success,empty,error}
	GenerationDuration prometheus.Histogram
	CandidatesAccepted prometheus.Counter
	CandidatesRejected prometheus.Counter
	ZonesSkipped       prometheus.Counter

	SnapshotWrites *prometheus.CounterVec // labels: artifact={aqi,recommendations}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.JobRunning,
		m.ZonesUpdated,
		m.ZonesFailed,
		m.ProviderRequests,
		m.FetchDuration,
		m.GenerationRequests,
		m.GenerationDuration,
		m.CandidatesAccepted,
		m.CandidatesRejected,
		m.ZonesSkipped,
		m.SnapshotWrites,
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
		JobRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aqi_pipeline",
			Name:      "job_running",
			Help:      "1 while a batch job is active, 0 once it has finished.",
		}),
		ZonesUpdated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_pipeline",
			Name:      "zones_updated_total",
			Help:      "Zones refreshed with a live measurement this run.",
		}),
		ZonesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_pipeline",
			Name:      "zones_failed_total",
			Help:      "Zones that fell back to previous or baseline data this run.",
		}),
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aqi_pipeline",
			Name:      "provider_requests_total",
			Help:      "Measurement provider requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aqi_pipeline",
			Name:      "fetch_duration_seconds",
			Help:      "Measurement provider request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider"}),
		GenerationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aqi_pipeline",
			Name:      "generation_requests_total",
			Help:      "Generative text service requests by outcome.",
		}, []string{"outcome"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aqi_pipeline",
			Name:      "generation_duration_seconds",
			Help:      "Generative text service request duration in seconds.",
			Buckets:   []float64{1, 5, 10, 20, 30, 60, 90, 120},
		}),
		CandidatesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_pipeline",
			Name:      "candidates_accepted_total",
			Help:      "Generated candidates that passed validation.",
		}),
		CandidatesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_pipeline",
			Name:      "candidates_rejected_total",
			Help:      "Generated candidates dropped by validation.",
		}),
		ZonesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aqi_pipeline",
			Name:      "zones_skipped_total",
			Help:      "Zones skipped during recommendation generation.",
		}),
		SnapshotWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aqi_pipeline",
			Name:      "snapshot_writes_total",
			Help:      "Published snapshot envelopes by artifact.",
		}, []string{"artifact"}),
	}
}
