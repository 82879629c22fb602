package enums

import "fmt"

// BillingCycle is the recurrence period understood by the payment gateway.
type BillingCycle string

const (
	BillingCycleWeekly       BillingCycle = "WEEKLY"
	BillingCycleBiweekly     BillingCycle = "BIWEEKLY"
	BillingCycleMonthly      BillingCycle = "MONTHLY"
	BillingCycleBimonthly    BillingCycle = "BIMONTHLY"
	BillingCycleQuarterly    BillingCycle = "QUARTERLY"
	BillingCycleSemiannually BillingCycle = "SEMIANNUALLY"
	BillingCycleYearly       BillingCycle = "YEARLY"
)

// BillingCycles lists every cycle in ascending period order.
var BillingCycles = []BillingCycle{
	BillingCycleWeekly,
	BillingCycleBiweekly,
	BillingCycleMonthly,
	BillingCycleBimonthly,
	BillingCycleQuarterly,
	BillingCycleSemiannually,
	BillingCycleYearly,
}

// String implements fmt.Stringer.
func (c BillingCycle) String() string {
	return string(c)
}

// IsValid reports whether the value is a known BillingCycle.
func (c BillingCycle) IsValid() bool {
	for _, candidate := range BillingCycles {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseBillingCycle converts raw input into a BillingCycle.
func ParseBillingCycle(value string) (BillingCycle, error) {
	for _, candidate := range BillingCycles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid billing cycle %q", value)
}
