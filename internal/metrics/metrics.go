// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpscout_provider_requests_total",
			Help: "Total number of search provider requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	ProviderRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpscout_provider_retries_total",
			Help: "Total number of retried search provider requests",
		},
		[]string{"endpoint", "reason"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcpscout_provider_request_duration_seconds",
			Help:    "Duration of search provider requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpscout_tool_calls_total",
			Help: "Total number of tool calls by tool and outcome",
		},
		[]string{"tool", "outcome"},
	)

	ToolDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "mcpscout_tool_duration_seconds",
			Help: "Duration of tool calls in seconds",
		},
		[]string{"tool"},
	)

	RecommendationsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mcpscout_recommendations_returned",
			Help:    "Number of recommendations returned per tool call",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
		[]string{"tool"},
	)

	HistoryEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mcpscout_history_events_dropped_total",
			Help: "Search history events dropped because the recorder queue was full",
		},
	)
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
)
