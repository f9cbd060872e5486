package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BusinessMetrics holds application-specific Prometheus collectors.
type BusinessMetrics struct {
	UploadsTotal          *prometheus.CounterVec
	RowsDroppedTotal      prometheus.Counter
	CollaboratorFailures  prometheus.Counter
	AnalyzeDuration       prometheus.Histogram
}

// NewBusinessMetrics registers and returns the application metrics.
func NewBusinessMetrics(reg prometheus.Registerer) *BusinessMetrics {
	factory := promauto.With(reg)

	return &BusinessMetrics{
		UploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediapulse_uploads_total",
			Help: "Total number of dashboard uploads by outcome",
		}, []string{"outcome"}),
		RowsDroppedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediapulse_rows_dropped_total",
			Help: "Total rows dropped during cleaning due to invalid dates",
		}),
		CollaboratorFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "mediapulse_collaborator_failures_total",
			Help: "Total failed generative insight calls",
		}),
		AnalyzeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mediapulse_analyze_duration_seconds",
			Help:    "Duration of the full analyze pipeline in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// MetricsHandler returns the HTTP handler exposing the given registry.
func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
