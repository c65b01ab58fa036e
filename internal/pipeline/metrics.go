package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// pipelineMetrics holds the Prometheus metrics owned by the orchestrator.
// Registering against an injected Registerer keeps tests hermetic.
type pipelineMetrics struct {
	// stepDurationSeconds records each pipeline step, partitioned by step
	// label and status.
	stepDurationSeconds *prometheus.HistogramVec

	// requestsTotal counts completed Recommend calls by outcome: the rerank
	// outcome on success, "invalid" or "error" otherwise.
	requestsTotal *prometheus.CounterVec

	// cacheLookupsTotal counts embedding cache lookups by result (hit|miss).
	cacheLookupsTotal *prometheus.CounterVec
}

func newPipelineMetrics(reg prometheus.Registerer) *pipelineMetrics {
	factory := promauto.With(reg)

	return &pipelineMetrics{
		stepDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "edurec",
			Subsystem: "pipeline",
			Name:      "step_duration_seconds",
			Help:      "Duration of each recommendation pipeline step, partitioned by step and status.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 60},
		}, []string{"step", "status"}),

		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edurec",
			Subsystem: "pipeline",
			Name:      "requests_total",
			Help:      "Total number of recommendation requests, partitioned by outcome.",
		}, []string{"outcome"}),

		cacheLookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edurec",
			Subsystem: "embedding_cache",
			Name:      "lookups_total",
			Help:      "Content embedding cache lookups, partitioned by result.",
		}, []string{"result"}),
	}
}
