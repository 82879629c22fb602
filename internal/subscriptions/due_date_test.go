package subscriptions

import (
	"testing"
	"time"

	"github.com/angelmondragon/marketbill-backend/pkg/enums"
)

func TestNextDueDatePerCycle(t *testing.T) {
	from := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	cases := map[enums.BillingCycle]string{
		enums.BillingCycleWeekly:       "2025-03-22",
		enums.BillingCycleBiweekly:     "2025-03-29",
		enums.BillingCycleMonthly:      "2025-04-15",
		enums.BillingCycleBimonthly:    "2025-05-15",
		enums.BillingCycleQuarterly:    "2025-06-15",
		enums.BillingCycleSemiannually: "2025-09-15",
		enums.BillingCycleYearly:       "2026-03-15",
	}
	for cycle, want := range cases {
		got, err := CalculateNextDueDate(cycle, from)
		if err != nil {
			t.Fatalf("%s: %v", cycle, err)
		}
		if got != want {
			t.Fatalf("%s: expected %s, got %s", cycle, want, got)
		}
	}
}

func TestNextDueDateUnknownCycleMatchesMonthly(t *testing.T) {
	from := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	unknown := NextDueDate(enums.BillingCycle("DAILY"), from)
	monthly := NextDueDate(enums.BillingCycleMonthly, from)
	if !unknown.Equal(monthly) {
		t.Fatalf("expected %v, got %v", monthly, unknown)
	}
}

func TestResolveCycle(t *testing.T) {
	if c, ok := ResolveCycle(" yearly "); !ok || c != enums.BillingCycleYearly {
		t.Fatalf("unexpected %s %v", c, ok)
	}
	if c, ok := ResolveCycle("Mensal"); !ok || c != enums.BillingCycleMonthly {
		t.Fatalf("unexpected %s %v", c, ok)
	}
	if c, ok := ResolveCycle(""); ok || c != enums.BillingCycleMonthly {
		t.Fatalf("expected MONTHLY fallback, got %s %v", c, ok)
	}
}
