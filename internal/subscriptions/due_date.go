package subscriptions

import (
	"strings"
	"time"

	"github.com/angelmondragon/marketbill-backend/pkg/enums"
	"github.com/angelmondragon/marketbill-backend/pkg/format"
)

// cycleAliases maps Portuguese cycle names to the gateway's.
var cycleAliases = map[string]enums.BillingCycle{
	"SEMANAL":    enums.BillingCycleWeekly,
	"QUINZENAL":  enums.BillingCycleBiweekly,
	"MENSAL":     enums.BillingCycleMonthly,
	"BIMESTRAL":  enums.BillingCycleBimonthly,
	"TRIMESTRAL": enums.BillingCycleQuarterly,
	"SEMESTRAL":  enums.BillingCycleSemiannually,
	"ANUAL":      enums.BillingCycleYearly,
}

// ResolveCycle normalizes input to a gateway cycle. Unknown input is reported
// with ok=false and MONTHLY.
func ResolveCycle(input string) (enums.BillingCycle, bool) {
	if cycle, ok := format.NormalizeCycle(input); ok {
		return cycle, true
	}
	if cycle, ok := cycleAliases[strings.ToUpper(strings.TrimSpace(input))]; ok {
		return cycle, true
	}
	return enums.BillingCycleMonthly, false
}

// NextDueDate advances from by one period of cycle. Unknown cycles advance
// one month.
func NextDueDate(cycle enums.BillingCycle, from time.Time) time.Time {
	switch cycle {
	case enums.BillingCycleWeekly:
		return from.AddDate(0, 0, 7)
	case enums.BillingCycleBiweekly:
		return from.AddDate(0, 0, 14)
	case enums.BillingCycleBimonthly:
		return from.AddDate(0, 2, 0)
	case enums.BillingCycleQuarterly:
		return from.AddDate(0, 3, 0)
	case enums.BillingCycleSemiannually:
		return from.AddDate(0, 6, 0)
	case enums.BillingCycleYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// CalculateNextDueDate returns NextDueDate formatted for the gateway.
func CalculateNextDueDate(cycle enums.BillingCycle, from time.Time) (string, error) {
	formatted, err := format.FormatDate(NextDueDate(cycle, from))
	if err != nil {
		return "", &BuildError{Kind: BuildErrDateFormat, Field: "next due date", Message: "failed to format next due date", Err: err}
	}
	return formatted, nil
}
