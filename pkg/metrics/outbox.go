package metrics

import "github.com/prometheus/client_golang/prometheus"

// OutboxMetrics counts relay outcomes per event type.
type OutboxMetrics struct {
	relayed *prometheus.CounterVec
}

// NewOutboxMetrics registers the relay counter. A nil registerer yields a no-op recorder.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	relayed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outbox_events_total",
		Help:      "Outbox rows handled by the publisher, by outcome.",
	}, []string{"event_type", "outcome"})
	reg.MustRegister(relayed)
	return &OutboxMetrics{relayed: relayed}
}

// IncRelayed records one row outcome: published, retry or dead_lettered.
func (o *OutboxMetrics) IncRelayed(eventType, outcome string) {
	if o == nil || o.relayed == nil {
		return
	}
	o.relayed.WithLabelValues(normalizeLabel(eventType), normalizeLabel(outcome)).Inc()
}
