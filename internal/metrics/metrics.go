// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ractso_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ractso_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ractso_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ractso_api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	ViewsTracked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ractso_views_tracked_total",
			Help: "Total number of view events applied to the model",
		},
	)

	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ractso_recommendation_requests_total",
			Help: "Total number of recommendation pages served, by producing strategy",
		},
		[]string{"source"}, // similarity, author, popular, empty
	)

	RecommendationFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ractso_recommendation_fallbacks_total",
			Help: "Total number of requests that degraded to popular posts after a strategy failure",
		},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ractso_recommendation_duration_seconds",
			Help:    "Time to produce a recommendation page in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	ModelUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ractso_model_users",
			Help: "Number of users in the interaction store",
		},
	)

	ModelPosts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ractso_model_posts",
			Help: "Number of distinct posts in the interaction store",
		},
	)

	ModelInteractions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ractso_model_interactions",
			Help: "Total number of recorded user-post interactions",
		},
	)

	// Warm Start Metrics
	WarmStartDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ractso_warm_start_duration_seconds",
			Help:    "Duration of the warm-start rebuild in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
	)

	WarmStartRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ractso_warm_start_records",
			Help: "Number of view records read by the last warm start",
		},
	)

	WarmStartRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ractso_warm_start_runs_total",
			Help: "Total number of warm-start runs by final state",
		},
		[]string{"state"}, // completed, empty, failed
	)

	// Persistence Sink Metrics
	SinkMessagesHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ractso_sink_messages_total",
			Help: "Total number of view-tracked messages handled by a persistence sink",
		},
		[]string{"sink"},
	)

	SinkFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ractso_sink_failures_total",
			Help: "Total number of persistence sink failures",
		},
		[]string{"sink"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ractso_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ractso_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ractso_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ractso_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ractso_app_start_time_seconds",
			Help: "Unix time the process started serving",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordViewTracked records one applied view event.
func RecordViewTracked() {
	ViewsTracked.Inc()
}

// RecordRecommendation records a served recommendation page. An empty
// source means no strategy produced items.
func RecordRecommendation(source string, fallback bool, duration time.Duration) {
	if source == "" {
		source = "empty"
	}
	RecommendationRequests.WithLabelValues(source).Inc()
	RecommendationDuration.WithLabelValues(source).Observe(duration.Seconds())
	if fallback {
		RecommendationFallbacks.Inc()
	}
}

// UpdateModelGauges publishes the current model size.
func UpdateModelGauges(users, posts, interactions int) {
	ModelUsers.Set(float64(users))
	ModelPosts.Set(float64(posts))
	ModelInteractions.Set(float64(interactions))
}

// RecordWarmStart records the outcome of a warm-start run.
func RecordWarmStart(state string, records int, duration time.Duration) {
	WarmStartRuns.WithLabelValues(state).Inc()
	WarmStartRecords.Set(float64(records))
	WarmStartDuration.Observe(duration.Seconds())
}

// RecordSinkMessage records a message handled by sink, successfully or not.
func RecordSinkMessage(sink string, err error) {
	SinkMessagesHandled.WithLabelValues(sink).Inc()
	if err != nil {
		SinkFailures.WithLabelValues(sink).Inc()
	}
}

// RecordCircuitBreakerResult records one call through a breaker.
func RecordCircuitBreakerResult(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordCircuitBreakerTransition records a state change and updates the
// state gauge. States are encoded 0=closed, 1=half-open, 2=open.
func RecordCircuitBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// SetAppInfo publishes version information and the start time.
func SetAppInfo(version, goVersion string, started time.Time) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
	AppStartTime.Set(float64(started.Unix()))
}

// StatusLabel formats an HTTP status code as a metric label.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}
