package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// UpstreamMetrics records calls made to the marketplace REST API.
type UpstreamMetrics struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

// NewUpstreamMetrics registers the upstream metrics on the provided registerer.
func NewUpstreamMetrics(reg prometheus.Registerer) *UpstreamMetrics {
	if reg == nil {
		return &UpstreamMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Duration of marketplace API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_request_failures_total",
		Help: "Failed marketplace API calls by error code.",
	}, []string{"operation", "code"})
	reg.MustRegister(duration, failures)
	return &UpstreamMetrics{duration: duration, failures: failures}
}

// ObserveDuration records the latency of one call.
func (u *UpstreamMetrics) ObserveDuration(operation string, elapsed time.Duration) {
	if u == nil || u.duration == nil {
		return
	}
	u.duration.WithLabelValues(normalizeLabel(operation)).Observe(elapsed.Seconds())
}

// IncFailure counts a failed call.
func (u *UpstreamMetrics) IncFailure(operation, code string) {
	if u == nil || u.failures == nil {
		return
	}
	u.failures.WithLabelValues(normalizeLabel(operation), normalizeLabel(code)).Inc()
}
