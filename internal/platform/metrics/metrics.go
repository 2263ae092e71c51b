package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	VotesCast          prometheus.Counter
	DuplicateVotes     prometheus.Counter
	VotesRejected      *prometheus.CounterVec
	CastDurationMs     prometheus.Histogram
	ResultsServed      prometheus.Counter
	DegradedQueries    prometheus.Counter
	AuditEventsDropped prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		VotesCast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_votes_cast_total",
			Help: "Total number of ballots cast successfully",
		}),
		DuplicateVotes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_duplicate_votes_rejected_total",
			Help: "Total number of cast attempts rejected by the idempotency record",
		}),
		VotesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ballotbox_votes_rejected_total",
			Help: "Total number of cast attempts rejected before the atomic unit",
		}, []string{"reason"}),
		CastDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ballotbox_cast_duration_ms",
			Help:    "Latency of the vote-cast atomic unit in milliseconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		}),
		ResultsServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_results_served_total",
			Help: "Total number of result projections served",
		}),
		DegradedQueries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_degraded_queries_total",
			Help: "Total number of queries served by the in-memory fallback path",
		}),
		AuditEventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ballotbox_audit_events_dropped_total",
			Help: "Total number of audit events dropped due to a full buffer",
		}),
	}
}
