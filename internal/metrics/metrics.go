// Package metrics exposes Prometheus collectors for the request pipeline
// and outbound collaborators.
//
// Collectors are registered once on the default registry through promauto and
// served at /metrics.
//
// Usage:
//
//	metrics.RecordStage("auth.login", "validate", "ok", 120*time.Microsecond)
//	metrics.RecordResponse("auth.login", 200)
//	metrics.RecordUpstream("image_host", "upload", err)
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageDuration tracks how long each pipeline stage takes per route.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "profile_api_stage_duration_seconds",
			Help:    "Duration of request pipeline stages in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"route", "stage", "outcome"},
	)

	// ResponsesTotal counts envelopes sent by route and status code.
	ResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_api_responses_total",
			Help: "Total number of enveloped responses",
		},
		[]string{"route", "status"},
	)

	// ValidationFailuresTotal counts field errors by reason.
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_api_validation_failures_total",
			Help: "Total number of field validation failures",
		},
		[]string{"route", "reason"},
	)

	// UpstreamCallsTotal counts calls to external collaborators.
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_api_upstream_calls_total",
			Help: "Total number of calls to external collaborators",
		},
		[]string{"collaborator", "operation", "result"},
	)

	// RateLimitedTotal counts requests rejected by the rate limiter.
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profile_api_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// SeedRecordsTotal counts bootstrap records by result (created, existing).
	SeedRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profile_api_seed_records_total",
			Help: "Total number of bootstrap seed attempts by result",
		},
		[]string{"key", "result"},
	)
)

// RecordStage observes one pipeline stage.
func RecordStage(route, stage, outcome string, d time.Duration) {
	StageDuration.WithLabelValues(route, stage, outcome).Observe(d.Seconds())
}

// RecordResponse counts one sent envelope.
func RecordResponse(route string, status int) {
	ResponsesTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// RecordValidationFailure counts one field error.
func RecordValidationFailure(route, reason string) {
	ValidationFailuresTotal.WithLabelValues(route, reason).Inc()
}

// RecordUpstream counts one collaborator call.
func RecordUpstream(collaborator, operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	UpstreamCallsTotal.WithLabelValues(collaborator, operation, result).Inc()
}

// RecordRateLimited counts one rejected request.
func RecordRateLimited() {
	RateLimitedTotal.Inc()
}

// RecordSeed counts one seed attempt.
func RecordSeed(key string, created bool) {
	result := "existing"
	if created {
		result = "created"
	}
	SeedRecordsTotal.WithLabelValues(key, result).Inc()
}
