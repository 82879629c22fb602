package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestOutboxMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewOutboxMetrics(reg)
	m.IncRelayed("subscription_created", "published")
	m.IncRelayed("subscription_created", "published")
	m.IncRelayed("", "retry")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got, err := fetchCounterValue(mfs, "marketbill_outbox_events_total", "event_type", "subscription_created")
	if err != nil {
		t.Fatalf("fetch counter: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected 2 published, got %f", got)
	}
	if _, err := fetchCounterValue(mfs, "marketbill_outbox_events_total", "event_type", "unknown"); err != nil {
		t.Fatalf("expected empty label normalized: %v", err)
	}
}

func TestOutboxMetricsNilRegistererIsNoop(t *testing.T) {
	m := NewOutboxMetrics(nil)
	m.IncRelayed("x", "published")
	var nilMetrics *OutboxMetrics
	nilMetrics.IncRelayed("x", "published")
}
