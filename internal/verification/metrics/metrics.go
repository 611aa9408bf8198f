package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the verification module.
type Metrics struct {
	// Evidence gathering latencies by source
	EvidenceLatency *prometheus.HistogramVec

	// Accepted transitions by tier and verification type
	Transitions *prometheus.CounterVec

	// Automatic evaluation passes by outcome: upgraded, unchanged, error
	Evaluations *prometheus.CounterVec

	// Attestations refused by reason
	AttestationsRejected *prometheus.CounterVec

	// Overall automatic evaluation latency
	EvaluateLatency prometheus.Histogram

	Enrollments prometheus.Counter
}

// New registers the verification metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EvidenceLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trustmatrix_verification_evidence_duration_seconds",
			Help:    "Duration of evidence queries by source",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"source"}), // source: "checkins_14d", "checkins_90d", "donations", "contributions"

		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustmatrix_verification_transitions_total",
			Help: "Accepted tier transitions by tier and verification type",
		}, []string{"tier", "type"}),

		Evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustmatrix_verification_evaluations_total",
			Help: "Automatic upgrade evaluations by outcome",
		}, []string{"outcome"}),

		AttestationsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustmatrix_verification_attestations_rejected_total",
			Help: "Attestations refused by reason",
		}, []string{"reason"}),

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustmatrix_verification_evaluate_duration_seconds",
			Help:    "Duration of a full automatic evaluation including evidence and commit",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		Enrollments: factory.NewCounter(prometheus.CounterOpts{
			Name: "trustmatrix_members_enrolled_total",
			Help: "Total number of members enrolled",
		}),
	}
}

func (m *Metrics) ObserveEvidenceLatency(source string, d time.Duration) {
	if m != nil {
		m.EvidenceLatency.WithLabelValues(source).Observe(d.Seconds())
	}
}

func (m *Metrics) IncrementTransition(tier, verificationType string) {
	if m != nil {
		m.Transitions.WithLabelValues(tier, verificationType).Inc()
	}
}

func (m *Metrics) IncrementEvaluation(outcome string) {
	if m != nil {
		m.Evaluations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) IncrementAttestationRejected(reason string) {
	if m != nil {
		m.AttestationsRejected.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ObserveEvaluateLatency(d time.Duration) {
	if m != nil {
		m.EvaluateLatency.Observe(d.Seconds())
	}
}

// IncrementEnrollment increments the enrolled members counter by 1.
func (m *Metrics) IncrementEnrollment() {
	if m != nil {
		m.Enrollments.Inc()
	}
}
