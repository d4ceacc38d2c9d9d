package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module.
type Metrics struct {
	// Collaborator call latencies by source
	CollaboratorLatency *prometheus.HistogramVec

	// Decision outcomes by action and decisive reason
	DecisionOutcome *prometheus.CounterVec

	// Side effects (store, publish, notify) that failed after a decision
	SideEffectFailures *prometheus.CounterVec

	// Overall decide latency
	DecideLatency prometheus.Histogram
}

// New creates a Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a Metrics instance registered with reg.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CollaboratorLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "payrecon_decision_collaborator_duration_seconds",
			Help:    "Duration of collaborator lookups by source",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // source: "directory", "ledger", "notifier"

		DecisionOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payrecon_decision_outcomes_total",
			Help: "Total decision outcomes by action and decisive reason",
		}, []string{"action", "reason"}),

		SideEffectFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "payrecon_decision_side_effect_failures_total",
			Help: "Post-decision side effects that failed, by kind",
		}, []string{"kind"}), // kind: "store", "publish", "notify"

		DecideLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "payrecon_decision_decide_duration_seconds",
			Help:    "Duration of a full decision including collaborator lookups",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveCollaboratorLatency records the duration of a collaborator call.
func (m *Metrics) ObserveCollaboratorLatency(source string, d time.Duration) {
	if m != nil {
		m.CollaboratorLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

// IncrementOutcome records a decision outcome.
func (m *Metrics) IncrementOutcome(action, reason string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(action, reason).Inc()
	}
}

// IncrementSideEffectFailure records a failed store, publish or notify call.
func (m *Metrics) IncrementSideEffectFailure(kind string) {
	if m != nil {
		m.SideEffectFailures.WithLabelValues(kind).Inc()
	}
}

// ObserveDecideLatency records the total decision duration.
func (m *Metrics) ObserveDecideLatency(d time.Duration) {
	if m != nil {
		m.DecideLatency.Observe(d.Seconds())
	}
}
