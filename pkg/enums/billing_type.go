package enums

import (
	"fmt"
	"strings"
)

// BillingType is the payment method a subscription charges with.
type BillingType string

const (
	BillingTypePix        BillingType = "PIX"
	BillingTypeBoleto     BillingType = "BOLETO"
	BillingTypeCreditCard BillingType = "CREDIT_CARD"
)

var validBillingTypes = []BillingType{
	BillingTypePix,
	BillingTypeBoleto,
	BillingTypeCreditCard,
}

// String implements fmt.Stringer.
func (b BillingType) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BillingType.
func (b BillingType) IsValid() bool {
	for _, candidate := range validBillingTypes {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBillingType uppercases the input and matches it against the known types.
func ParseBillingType(value string) (BillingType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))
	for _, candidate := range validBillingTypes {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid billing type %q", value)
}
