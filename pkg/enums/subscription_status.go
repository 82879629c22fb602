package enums

import (
	"fmt"
	"strings"
)

// SubscriptionStatus is the local lifecycle state of a billing subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusPending  SubscriptionStatus = "pending"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
	SubscriptionStatusOverdue  SubscriptionStatus = "overdue"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

var subscriptionStatuses = map[SubscriptionStatus]struct{}{
	SubscriptionStatusPending:  {},
	SubscriptionStatusActive:   {},
	SubscriptionStatusInactive: {},
	SubscriptionStatusOverdue:  {},
	SubscriptionStatusCanceled: {},
}

func (s SubscriptionStatus) String() string { return string(s) }

func (s SubscriptionStatus) IsValid() bool {
	_, ok := subscriptionStatuses[s]
	return ok
}

// IsOpen reports whether the gateway is still expected to bill the subscription.
func (s SubscriptionStatus) IsOpen() bool {
	switch s {
	case SubscriptionStatusPending, SubscriptionStatusActive, SubscriptionStatusOverdue:
		return true
	}
	return false
}

func ParseSubscriptionStatus(value string) (SubscriptionStatus, error) {
	s := SubscriptionStatus(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid subscription status %q", value)
	}
	return s, nil
}
