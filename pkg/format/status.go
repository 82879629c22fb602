package format

import (
	"strings"

	"github.com/angelmondragon/marketbill-backend/pkg/enums"
)

var subscriptionStatusByGateway = map[string]enums.SubscriptionStatus{
	"ACTIVE":   enums.SubscriptionStatusActive,
	"INACTIVE": enums.SubscriptionStatusInactive,
	"EXPIRED":  enums.SubscriptionStatusInactive,
	"OVERDUE":  enums.SubscriptionStatusOverdue,
	"CANCELED": enums.SubscriptionStatusCanceled,
	"PENDING":  enums.SubscriptionStatusPending,
}

var paymentStatusByGateway = map[string]enums.PaymentStatus{
	"RECEIVED":         enums.PaymentStatusConfirmed,
	"CONFIRMED":        enums.PaymentStatusConfirmed,
	"RECEIVED_IN_CASH": enums.PaymentStatusConfirmed,
	"OVERDUE":          enums.PaymentStatusOverdue,
	"REFUNDED":         enums.PaymentStatusRefunded,
	"CANCELED":         enums.PaymentStatusCanceled,
	"FAILED":           enums.PaymentStatusFailed,
}

// GatewayStatusToLocal maps a gateway subscription status onto the local enum.
// Unknown values map to pending.
func GatewayStatusToLocal(status string) enums.SubscriptionStatus {
	if mapped, ok := subscriptionStatusByGateway[normalizeStatus(status)]; ok {
		return mapped
	}
	return enums.SubscriptionStatusPending
}

// GatewayPaymentStatusToLocal maps a gateway payment status onto the local enum.
// Unknown values map to pending.
func GatewayPaymentStatusToLocal(status string) enums.PaymentStatus {
	if mapped, ok := paymentStatusByGateway[normalizeStatus(status)]; ok {
		return mapped
	}
	return enums.PaymentStatusPending
}

func normalizeStatus(value string) string {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	return strings.ReplaceAll(normalized, " ", "_")
}
