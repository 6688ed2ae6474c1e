package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout initiations and reconciliation outcomes.
type CheckoutMetrics struct {
	initiated *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	outcome   *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	initiated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_initiated_total",
		Help: "Payment-session initiations by result.",
	}, []string{"result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reconciliation_duration_seconds",
		Help:    "Duration of payment reconciliation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"result"})
	outcome := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciliation_total",
		Help: "Payment reconciliation runs by result.",
	}, []string{"result"})
	reg.MustRegister(initiated, duration, outcome)
	return &CheckoutMetrics{
		initiated: initiated,
		duration:  duration,
		outcome:   outcome,
	}
}

// IncInitiated counts a payment-session initiation with the given result label.
func (c *CheckoutMetrics) IncInitiated(result string) {
	if c == nil || c.initiated == nil {
		return
	}
	c.initiated.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveReconciliation records the duration and result of a reconciliation run.
func (c *CheckoutMetrics) ObserveReconciliation(result string, duration time.Duration) {
	if c == nil || c.outcome == nil {
		return
	}
	label := normalizeLabel(result)
	c.outcome.WithLabelValues(label).Inc()
	c.duration.WithLabelValues(label).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
