package enums

import (
	"fmt"
	"strings"
)

// PaymentStatus is the local state of a gateway charge.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
	PaymentStatusOverdue   PaymentStatus = "overdue"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCanceled  PaymentStatus = "canceled"
	PaymentStatusFailed    PaymentStatus = "failed"
)

var paymentStatuses = map[PaymentStatus]struct{}{
	PaymentStatusPending:   {},
	PaymentStatusConfirmed: {},
	PaymentStatusOverdue:   {},
	PaymentStatusRefunded:  {},
	PaymentStatusCanceled:  {},
	PaymentStatusFailed:    {},
}

func (p PaymentStatus) String() string { return string(p) }

func (p PaymentStatus) IsValid() bool {
	_, ok := paymentStatuses[p]
	return ok
}

// IsFinal reports whether the charge can no longer change on the gateway.
func (p PaymentStatus) IsFinal() bool {
	switch p {
	case PaymentStatusRefunded, PaymentStatusCanceled, PaymentStatusFailed:
		return true
	}
	return false
}

// SubscriptionStatus is the state a charge in this status moves its
// subscription to. ok is false when the subscription stays as it is.
// A refund cancels the subscription.
func (p PaymentStatus) SubscriptionStatus() (status SubscriptionStatus, ok bool) {
	switch p {
	case PaymentStatusConfirmed:
		return SubscriptionStatusActive, true
	case PaymentStatusOverdue:
		return SubscriptionStatusOverdue, true
	case PaymentStatusCanceled, PaymentStatusRefunded:
		return SubscriptionStatusCanceled, true
	}
	return "", false
}

// ParsePaymentStatus accepts the stored lowercase form, ignoring case and
// surrounding space.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	p := PaymentStatus(strings.ToLower(strings.TrimSpace(value)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid payment status %q", value)
	}
	return p, nil
}
