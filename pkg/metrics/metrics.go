// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// MockResponsesTotal counts generated assistant replies per mode.
	MockResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mock_responses_total",
			Help: "Total simulated assistant responses",
		},
		[]string{"mode"},
	)

	// MockResponseDelay tracks the simulated latency applied per reply.
	MockResponseDelay = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mock_response_delay_seconds",
			Help:    "Simulated response delay in seconds",
			Buckets: []float64{0, .1, .25, .5, .75, 1, 1.5, 2, 2.5, 5},
		},
		[]string{"mode"},
	)

	// MockRichResponsesTotal counts replies that carried a visual payload.
	MockRichResponsesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mock_rich_responses_total",
			Help: "Total simulated responses with rich content",
		},
	)

	// ThreadsTotal tracks threads created.
	ThreadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "threads_total",
			Help: "Total threads created",
		},
	)

	// EntriesTotal tracks thread entries appended.
	EntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thread_entries_total",
			Help: "Total thread entries appended",
		},
		[]string{"category"},
	)

	// FeedbackTotal tracks feedback submitted.
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_total",
			Help: "Total feedback submitted",
		},
		[]string{"rating"},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// PersistenceErrorsTotal counts failed backend writes.
	PersistenceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persistence_errors_total",
			Help: "Failed persistence operations",
		},
		[]string{"backend", "op"},
	)

	// NATSPublishedTotal counts thread events published to JetStream.
	NATSPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nats_events_published_total",
			Help: "Thread events published to NATS",
		},
		[]string{"type", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordResponse records a generated reply.
func RecordResponse(mode string, delayMs int, rich bool) {
	MockResponsesTotal.WithLabelValues(mode).Inc()
	MockResponseDelay.WithLabelValues(mode).Observe(float64(delayMs) / 1000)
	if rich {
		MockRichResponsesTotal.Inc()
	}
}

// RecordEntry records an appended thread entry.
func RecordEntry(category string) {
	EntriesTotal.WithLabelValues(category).Inc()
}

// RecordThread records a newly created thread.
func RecordThread() {
	ThreadsTotal.Inc()
}

// RecordFeedback records submitted feedback.
func RecordFeedback(rating string) {
	FeedbackTotal.WithLabelValues(rating).Inc()
}

// RecordPersistenceError records a failed backend operation.
func RecordPersistenceError(backend, op string) {
	PersistenceErrorsTotal.WithLabelValues(backend, op).Inc()
}

// RecordPublish records a NATS publish attempt.
func RecordPublish(eventType, status string) {
	NATSPublishedTotal.WithLabelValues(eventType, status).Inc()
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
