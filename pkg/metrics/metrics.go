package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Delivery attempts by provider and terminal outcome.
	EmailDeliveryCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "email_delivery_count",
			Help: "Total number of email delivery attempts",
		},
		[]string{"provider", "status"}, // status: sent, failed
	)

	// Fallback activations: primary failed and a secondary was tried.
	EmailFallbackCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "email_fallback_count",
			Help: "Total number of fallback provider attempts",
		},
	)

	// Provider call latency (milliseconds).
	ProviderSendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "provider_send_latency_ms",
			Help:    "Email provider send latency in milliseconds",
			Buckets: prometheus.ExponentialBuckets(10, 2, 10), // 10ms to ~10s
		},
		[]string{"provider", "status"},
	)

	// HTTP request latency (seconds).
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// Credential verification outcomes (valid, expired, bad_signature, malformed).
	AuthVerificationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_verification_count",
			Help: "Total number of session credential verifications",
		},
		[]string{"state"},
	)

	// Queries exceeding the slow-query threshold.
	SlowQueryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "db_slow_query_count",
			Help: "Total number of slow database queries",
		},
	)

	// Role-check denials on guarded routes.
	AuthDenialCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_denial_count",
			Help: "Total number of authorization denials",
		},
		[]string{"kind"}, // kind: unauthenticated, forbidden
	)
)

// RecordDelivery records one terminal delivery outcome.
func RecordDelivery(provider, status string) {
	EmailDeliveryCount.WithLabelValues(provider, status).Inc()
}

// RecordProviderSendLatency records one provider call.
func RecordProviderSendLatency(provider, status string, duration time.Duration) {
	ProviderSendLatency.WithLabelValues(provider, status).Observe(float64(duration.Milliseconds()))
}

// RecordHTTPRequestDuration records one served request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}
