package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeBusy    = "busy"
)

// CheckoutMetrics records checkout submissions by payment method.
type CheckoutMetrics struct {
	attempts         *prometheus.CounterVec
	outcomes         *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	rejectedServices *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on reg. A nil registerer
// yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout submissions started.",
	}, []string{"payment_method"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_outcomes_total",
		Help: "Checkout submissions by result.",
	}, []string{"payment_method", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Time spent submitting an order at checkout.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_rejected_services_total",
		Help: "Service lines beyond one per kind found in baskets refused at checkout.",
	}, []string{"kind"})
	reg.MustRegister(attempts, outcomes, duration, rejected)
	return &CheckoutMetrics{
		attempts:         attempts,
		outcomes:         outcomes,
		duration:         duration,
		rejectedServices: rejected,
	}
}

func (m *CheckoutMetrics) IncAttempt(method string) {
	if m == nil || m.attempts == nil {
		return
	}
	m.attempts.WithLabelValues(normalizeLabel(method)).Inc()
}

func (m *CheckoutMetrics) IncOutcome(method, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(method), normalizeLabel(outcome)).Inc()
}

func (m *CheckoutMetrics) ObserveDuration(method string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(method)).Observe(d.Seconds())
}

func (m *CheckoutMetrics) AddRejectedServices(kind string, n int) {
	if m == nil || m.rejectedServices == nil || n <= 0 {
		return
	}
	m.rejectedServices.WithLabelValues(normalizeLabel(kind)).Add(float64(n))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
