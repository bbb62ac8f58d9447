package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once

	// Ingestion metrics
	EventsIngested *prometheus.CounterVec
	EventsRejected *prometheus.CounterVec

	// Query metrics
	AnalyticsQueries *prometheus.CounterVec
	AnomaliesFound   *prometheus.CounterVec
)

// Init initializes all metrics and registers them with Prometheus
func Init() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()

		EventsIngested = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alma_events_ingested_total",
				Help: "Total number of normalized events accepted for ingestion",
			},
			[]string{"source"},
		)

		EventsRejected = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alma_events_rejected_total",
				Help: "Total number of raw records rejected during normalization",
			},
			[]string{"reason"},
		)

		AnalyticsQueries = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alma_analytics_queries_total",
				Help: "Total number of analytics queries served",
			},
			[]string{"kind"},
		)

		AnomaliesFound = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alma_anomalies_found_total",
				Help: "Total number of anomalies reported by anomaly queries",
			},
			[]string{"type"},
		)

		registry.MustRegister(
			EventsIngested,
			EventsRejected,
			AnalyticsQueries,
			AnomaliesFound,
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

// Handler returns the HTTP handler serving the metrics registry.
func Handler() http.Handler {
	Init()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
