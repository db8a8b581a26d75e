// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalysesCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_completed_total",
			Help: "Total number of analyses completed, by verdict category",
		},
		[]string{"category"},
	)

	AnalysesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analyses_failed_total",
			Help: "Total number of analyses that failed hard",
		},
		[]string{"error_code"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of each pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	VerifierCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verifier_cache_requests_total",
			Help: "Verifier cache requests, by outcome (hit/miss)",
		},
		[]string{"outcome"},
	)

	VerifierDegraded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verifier_degraded_total",
			Help: "Verifier calls that degraded to trust=unknown",
		},
	)

	KnowledgeUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "knowledge_updates_total",
			Help: "Knowledge base updates, by outcome (inserted/confirmed/skipped/failed)",
		},
		[]string{"outcome"},
	)
)
