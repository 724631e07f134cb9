// Package metrics exposes the Prometheus collectors of the service.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Embedding job
	EmbeddingJobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamefit_embedding_job_runs_total",
			Help: "Total number of embedding job runs by outcome",
		},
		[]string{"outcome"}, // "completed", "failed"
	)

	EmbeddingJobProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gamefit_embedding_job_progress_ratio",
			Help: "Progress of the current embedding job in [0,1]",
		},
	)

	EmbeddingJobDocuments = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gamefit_embedding_job_documents",
			Help: "Number of documents in the current embedding corpus",
		},
	)

	EmbeddingBatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamefit_embedding_batch_duration_seconds",
			Help:    "Duration of embedding provider batch calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model", "status"},
	)

	EmbeddingBatchRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gamefit_embedding_batch_retries_total",
			Help: "Total number of retried embedding batches",
		},
	)

	// Provider resilience
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gamefit_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	RateLimitWaitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gamefit_rate_limit_wait_seconds",
			Help:    "Time spent waiting for the embedding provider rate limiter",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	// Recommendations
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gamefit_recommend_requests_total",
			Help: "Total number of recommendation requests by evidence state",
		},
		[]string{"evidence_state"},
	)

	EvidenceLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamefit_evidence_lookup_duration_seconds",
			Help:    "Duration of evidence lookups including the query embedding",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"result"}, // "found", "none", "error"
	)

	// API
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gamefit_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gamefit_websocket_connections",
			Help: "Current number of job stream WebSocket connections",
		},
	)
)

// RecordBatch records one embedding provider batch call.
func RecordBatch(model string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	EmbeddingBatchDuration.WithLabelValues(model, status).Observe(duration.Seconds())
}

// RecordJobOutcome records the end of an embedding run.
func RecordJobOutcome(completed bool) {
	if completed {
		EmbeddingJobRuns.WithLabelValues("completed").Inc()
		return
	}
	EmbeddingJobRuns.WithLabelValues("failed").Inc()
}

// RecordAPIRequest records an API request.
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, route, strconv.Itoa(statusCode)).Observe(duration.Seconds())
}

// RecordEvidenceLookup records an evidence lookup.
func RecordEvidenceLookup(result string, duration time.Duration) {
	EvidenceLookupDuration.WithLabelValues(result).Observe(duration.Seconds())
}
