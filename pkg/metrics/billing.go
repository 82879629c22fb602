package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "marketbill"

// BillingMetrics covers outbound gateway calls, the subscription self-heal
// sequence and inbound webhook handling.
type BillingMetrics struct {
	gatewayDuration *prometheus.HistogramVec
	selfHeal        *prometheus.CounterVec
	webhookEvents   *prometheus.CounterVec
}

// NewBillingMetrics registers the billing metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewBillingMetrics(reg prometheus.Registerer) *BillingMetrics {
	if reg == nil {
		return &BillingMetrics{}
	}
	gatewayDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "gateway_request_duration_seconds",
		Help:      "Latency of payment gateway requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation", "status"})
	selfHeal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscription_self_heal_total",
		Help:      "Self-heal attempts made while creating subscriptions.",
	}, []string{"strategy", "outcome"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhook_events_total",
		Help:      "Inbound gateway webhook events by outcome.",
	}, []string{"event", "outcome"})
	reg.MustRegister(gatewayDuration, selfHeal, webhookEvents)
	return &BillingMetrics{
		gatewayDuration: gatewayDuration,
		selfHeal:        selfHeal,
		webhookEvents:   webhookEvents,
	}
}

// ObserveGatewayRequest records a gateway call. status 0 means no response was received.
func (b *BillingMetrics) ObserveGatewayRequest(operation string, status int, duration time.Duration) {
	if b == nil || b.gatewayDuration == nil {
		return
	}
	label := "network_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	b.gatewayDuration.WithLabelValues(normalizeLabel(operation), label).Observe(duration.Seconds())
}

// IncSelfHeal counts one self-heal strategy attempt.
func (b *BillingMetrics) IncSelfHeal(strategy, outcome string) {
	if b == nil || b.selfHeal == nil {
		return
	}
	b.selfHeal.WithLabelValues(normalizeLabel(strategy), normalizeLabel(outcome)).Inc()
}

// IncWebhookEvent counts one processed webhook delivery.
func (b *BillingMetrics) IncWebhookEvent(event, outcome string) {
	if b == nil || b.webhookEvents == nil {
		return
	}
	b.webhookEvents.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}
