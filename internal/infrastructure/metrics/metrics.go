// Package metrics provides Prometheus metrics for the relay-api service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConversations tracks the number of conversations in the store.
	ActiveConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_active_conversations",
			Help: "Number of conversations currently held in the store",
		},
	)

	// ConversationsCreated tracks the total number of conversations created.
	ConversationsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_conversations_created_total",
			Help: "Total number of conversations created",
		},
	)

	// ConversationsExpired tracks conversations removed by the retention sweep.
	ConversationsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_conversations_expired_total",
			Help: "Total number of conversations removed after the idle TTL",
		},
	)

	// RunsFinished tracks runs by terminal status.
	RunsFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_runs_finished_total",
			Help: "Total number of assistant runs by terminal status",
		},
		[]string{"status"},
	)

	// RunDuration tracks how long a run took to reach a terminal state.
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "relay_run_duration_seconds",
			Help:    "Time from run submission to a terminal state",
			Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30, 45},
		},
	)

	// HTTPRequests tracks HTTP requests by method, endpoint and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, endpoint, status string, duration float64) {
	HTTPRequests.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration)
}

// RecordConversationCreated increments conversation creation metrics.
func RecordConversationCreated() {
	ConversationsCreated.Inc()
	ActiveConversations.Inc()
}

// RecordConversationExpired records a retention-sweep removal.
func RecordConversationExpired() {
	ConversationsExpired.Inc()
	ActiveConversations.Dec()
}

// RecordRunFinished records a run reaching a terminal state.
func RecordRunFinished(status string, elapsed time.Duration) {
	RunsFinished.WithLabelValues(status).Inc()
	RunDuration.Observe(elapsed.Seconds())
}
