package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports operation timings and result counters to
// a Prometheus registry.
type PrometheusMetricsRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
}

// NewPrometheusMetricsRecorder constructs a recorder and registers its
// collectors with reg. A nil registerer falls back to the default registry.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) *PrometheusMetricsRecorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	rec := &PrometheusMetricsRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "itemcore",
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Duration of item service operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "itemcore",
			Subsystem: "service",
			Name:      "operation_results_total",
			Help:      "Item service operation outcomes by status.",
		}, []string{"operation", "status"}),
	}
	reg.MustRegister(rec.durations, rec.results)
	return rec
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}
