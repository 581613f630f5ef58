// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_provider_calls_total",
			Help: "Total number of external provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ai_provider_call_duration_seconds",
			Help: "Duration of external provider calls in seconds",
		},
		[]string{"provider"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_cache_hits_total",
			Help: "Total cache hits by namespace",
		},
		[]string{"namespace"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_cache_misses_total",
			Help: "Total cache misses by namespace (includes backend failures)",
		},
		[]string{"namespace"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_cache_errors_total",
			Help: "Total cache backend errors downgraded to misses",
		},
		[]string{"namespace", "operation"},
	)

	EstimatedCost = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_estimated_cost_dollars_total",
			Help: "Accumulated estimated provider cost in dollars",
		},
		[]string{"provider"},
	)

	CapabilityRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_capability_requests_total",
			Help: "Total capability requests by kind and outcome",
		},
		[]string{"capability", "outcome"},
	)
)
