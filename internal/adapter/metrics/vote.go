package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vote results.
const (
	VoteApplied  = "applied"
	VoteNoop     = "noop"
	VoteConflict = "conflict"
	VoteNotFound = "not_found"
	VoteError    = "error"
)

// VoteMetrics holds Prometheus metrics for the vote endpoint.
type VoteMetrics struct {
	VotesProcessed     *prometheus.CounterVec
	ProcessingDuration prometheus.Histogram
	VotesByIntent      *prometheus.CounterVec
	ConflictRetries    prometheus.Counter
}

// NewVoteMetrics creates and registers vote metrics on the given registry.
func NewVoteMetrics(reg prometheus.Registerer) *VoteMetrics {
	m := &VoteMetrics{
		VotesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_processed_total",
			Help:      "Total number of votes processed, by result.",
		}, []string{"result"}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "votes_processing_duration_seconds",
			Help:      "Duration of vote processing in seconds, retries included.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		VotesByIntent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_by_intent_total",
			Help:      "Total number of vote requests, by intent.",
		}, []string{"intent"}),
		ConflictRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vote_conflict_retries_total",
			Help:      "Total number of vote updates retried after a concurrent change.",
		}),
	}

	reg.MustRegister(m.VotesProcessed, m.ProcessingDuration, m.VotesByIntent, m.ConflictRetries)
	return m
}
