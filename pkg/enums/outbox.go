package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateSubscription OutboxAggregateType = "subscription"
	AggregatePayment      OutboxAggregateType = "payment"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateSubscription,
	AggregatePayment,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventSubscriptionCreated       OutboxEventType = "subscription_created"
	EventSubscriptionStatusChanged OutboxEventType = "subscription_status_changed"
	EventSubscriptionCanceled      OutboxEventType = "subscription_canceled"
	EventPaymentStatusChanged      OutboxEventType = "payment_status_changed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventSubscriptionCreated,
	EventSubscriptionStatusChanged,
	EventSubscriptionCanceled,
	EventPaymentStatusChanged,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

// Aggregate returns the aggregate type that owns events of this type.
func (e OutboxEventType) Aggregate() OutboxAggregateType {
	switch e {
	case EventPaymentStatusChanged:
		return AggregatePayment
	case EventSubscriptionCreated, EventSubscriptionStatusChanged, EventSubscriptionCanceled:
		return AggregateSubscription
	default:
		return ""
	}
}
