// Package metrics はPrometheusのメトリクスを定義します。
package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Gate decisions.
const (
	DecisionAllowed   = "allowed"
	DecisionBlocked   = "blocked"
	DecisionUnlimited = "unlimited"
	DecisionReleased  = "released"
)

var (
	UsageGateDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evolve_usage_gate_decisions_total",
			Help: "Total number of usage gate decisions by decision and metric",
		},
		[]string{"decision", "metric"},
	)

	SubscriptionUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evolve_subscription_updates_total",
			Help: "Total number of applied subscription updates by plan",
		},
		[]string{"plan"},
	)

	AssistantRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evolve_assistant_requests_total",
			Help: "Total number of assistant chat requests by outcome",
		},
		[]string{"outcome"}, // ok, upstream_error
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "evolve_stripe_webhook_events_total",
			Help: "Total number of Stripe webhook events by type and outcome",
		},
		[]string{"type", "outcome"}, // applied, ignored, rejected, failed
	)

	AssistantLatencySeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "evolve_assistant_latency_seconds",
			Help:    "Latency of upstream assistant calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
	)
)

// RecordGateDecision records a usage gate decision. metric may be empty for plain tracking.
func RecordGateDecision(decision, metric string) {
	if metric == "" {
		metric = "none"
	}
	UsageGateDecisionsTotal.WithLabelValues(decision, metric).Inc()
}

// RecordSubscriptionUpdate records an applied plan change.
func RecordSubscriptionUpdate(plan string) {
	SubscriptionUpdatesTotal.WithLabelValues(plan).Inc()
}

// RecordAssistantRequest records the outcome and latency of an upstream assistant call.
func RecordAssistantRequest(outcome string, seconds float64) {
	AssistantRequestsTotal.WithLabelValues(outcome).Inc()
	AssistantLatencySeconds.Observe(seconds)
}

// RecordWebhookEvent records how a Stripe event was handled.
func RecordWebhookEvent(eventType, outcome string) {
	WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// Handler serves the default registry for GET /metrics.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
