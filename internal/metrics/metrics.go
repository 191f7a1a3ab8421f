// Package metrics defines the Prometheus metrics exported by pulse and the
// HTTP plumbing to expose them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "pulse"

// Aggregation engine metrics.
var (
	EngineUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "updates_total",
			Help:      "Updates received by the aggregation engine, by field",
		},
		[]string{"field"},
	)

	EngineRendersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "renders_total",
			Help:      "Snapshots handed to the render sink",
		},
	)

	EngineSuppressedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "renders_suppressed_total",
			Help:      "Settled batches not rendered because the snapshot was unchanged",
		},
	)
)

// Search coordinator metrics.
var (
	SearchAttemptsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "attempts_total",
			Help:      "Search attempts started",
		},
	)

	SearchDeduplicatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "submissions_deduplicated_total",
			Help:      "Submissions absorbed by an identical attempt already in flight",
		},
	)

	SearchInvocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "invocations_total",
			Help:      "Search transport invocations, by outcome (success, failure, discarded)",
		},
		[]string{"outcome"},
	)

	SearchInvocationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "invocation_duration_seconds",
			Help:      "Search transport invocation latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	SearchRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "rejections_total",
			Help:      "Raw search inputs rejected by the parser, by reason",
		},
		[]string{"reason"},
	)
)

// Counter source metrics.
var (
	SourceEmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "emissions_total",
			Help:      "Values emitted by counter sources",
		},
		[]string{"source"},
	)

	SourceErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "source",
			Name:      "errors_total",
			Help:      "Counter source read failures",
		},
		[]string{"source"},
	)
)

// Invocation outcomes for SearchInvocationsTotal.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeDiscarded = "discarded"
)

func init() {
	prometheus.MustRegister(
		EngineUpdatesTotal,
		EngineRendersTotal,
		EngineSuppressedTotal,
		SearchAttemptsTotal,
		SearchDeduplicatedTotal,
		SearchInvocationsTotal,
		SearchInvocationDuration,
		SearchRejectionsTotal,
		SourceEmissionsTotal,
		SourceErrorsTotal,
	)
}
