package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeAggregate(t *testing.T) {
	cases := map[OutboxEventType]OutboxAggregateType{
		EventSubscriptionCreated:       AggregateSubscription,
		EventSubscriptionStatusChanged: AggregateSubscription,
		EventSubscriptionCanceled:      AggregateSubscription,
		EventPaymentStatusChanged:      AggregatePayment,
		"order_created":                "",
	}
	for eventType, want := range cases {
		assert.Equal(t, want, eventType.Aggregate(), string(eventType))
	}
}

func TestParseRejectsUnknownValues(t *testing.T) {
	_, err := ParseOutboxEventType("order_created")
	require.Error(t, err)
	_, err = ParseOutboxAggregateType("order")
	require.Error(t, err)
	_, err = ParseOutboxDLQErrorReason("timeout")
	require.Error(t, err)
	_, err = ParseOwnerKind("admin")
	require.Error(t, err)
	_, err = ParseSubscriptionStatus("paused")
	require.Error(t, err)
	_, err = ParsePaymentStatus("chargeback")
	require.Error(t, err)

	reason, err := ParseOutboxDLQErrorReason("max_attempts")
	require.NoError(t, err)
	assert.True(t, reason.Retryable())
	assert.False(t, OutboxDLQReasonNonRetryable.Retryable())
}

func TestOwnerKindPaymentOwnerType(t *testing.T) {
	assert.Equal(t, PaymentOwnerSellerSubscription, OwnerKindSeller.PaymentOwnerType())
	assert.Equal(t, PaymentOwnerShopperSubscription, OwnerKindShopper.PaymentOwnerType())
	assert.True(t, PaymentOwnerShopperSubscription.IsValid())
}

func TestSubscriptionStatusIsOpen(t *testing.T) {
	for _, status := range []SubscriptionStatus{SubscriptionStatusPending, SubscriptionStatusActive, SubscriptionStatusOverdue} {
		assert.True(t, status.IsOpen(), string(status))
	}
	for _, status := range []SubscriptionStatus{SubscriptionStatusInactive, SubscriptionStatusCanceled} {
		assert.False(t, status.IsOpen(), string(status))
	}
}

func TestParseStatusesNormalizeInput(t *testing.T) {
	sub, err := ParseSubscriptionStatus(" ACTIVE ")
	require.NoError(t, err)
	assert.Equal(t, SubscriptionStatusActive, sub)

	pay, err := ParsePaymentStatus("Overdue")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusOverdue, pay)
}

func TestPaymentStatusDrivesSubscription(t *testing.T) {
	cases := []struct {
		payment PaymentStatus
		want    SubscriptionStatus
		ok      bool
	}{
		{PaymentStatusConfirmed, SubscriptionStatusActive, true},
		{PaymentStatusOverdue, SubscriptionStatusOverdue, true},
		{PaymentStatusRefunded, SubscriptionStatusCanceled, true},
		{PaymentStatusCanceled, SubscriptionStatusCanceled, true},
		{PaymentStatusPending, "", false},
		{PaymentStatusFailed, "", false},
	}
	for _, tc := range cases {
		got, ok := tc.payment.SubscriptionStatus()
		assert.Equal(t, tc.ok, ok, string(tc.payment))
		assert.Equal(t, tc.want, got, string(tc.payment))
	}

	assert.True(t, PaymentStatusFailed.IsFinal())
	assert.False(t, PaymentStatusOverdue.IsFinal())
}
