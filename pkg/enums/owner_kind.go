package enums

import "fmt"

// OwnerKind identifies which marketplace party a subscription bills.
type OwnerKind string

const (
	OwnerKindSeller  OwnerKind = "seller"
	OwnerKindShopper OwnerKind = "shopper"
)

// String implements fmt.Stringer.
func (o OwnerKind) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OwnerKind.
func (o OwnerKind) IsValid() bool {
	return o == OwnerKindSeller || o == OwnerKindShopper
}

// PaymentOwnerType returns the payment owner tag for subscriptions of this kind.
func (o OwnerKind) PaymentOwnerType() PaymentOwnerType {
	if o == OwnerKindSeller {
		return PaymentOwnerSellerSubscription
	}
	return PaymentOwnerShopperSubscription
}

// ParseOwnerKind converts raw input into an OwnerKind.
func ParseOwnerKind(value string) (OwnerKind, error) {
	switch OwnerKind(value) {
	case OwnerKindSeller, OwnerKindShopper:
		return OwnerKind(value), nil
	}
	return "", fmt.Errorf("invalid owner kind %q", value)
}

// PaymentOwnerType is the persisted tag of a payment's owning subscription.
type PaymentOwnerType string

const (
	PaymentOwnerSellerSubscription  PaymentOwnerType = "seller_subscription"
	PaymentOwnerShopperSubscription PaymentOwnerType = "shopper_subscription"
)

// IsValid reports whether the value is a known PaymentOwnerType.
func (p PaymentOwnerType) IsValid() bool {
	return p == PaymentOwnerSellerSubscription || p == PaymentOwnerShopperSubscription
}
