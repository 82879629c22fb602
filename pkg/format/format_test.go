package format

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/marketbill-backend/pkg/enums"
)

func TestNormalizeCycle(t *testing.T) {
	cases := []struct {
		in   string
		want enums.BillingCycle
		ok   bool
	}{
		{in: "monthly", want: enums.BillingCycleMonthly, ok: true},
		{in: " Yearly ", want: enums.BillingCycleYearly, ok: true},
		{in: "SEMIANNUALLY", want: enums.BillingCycleSemiannually, ok: true},
		{in: "MENSAL", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := NormalizeCycle(tc.in)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("NormalizeCycle(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestFormatDateAcceptsTimesAndStrings(t *testing.T) {
	ts := time.Date(2024, time.March, 9, 15, 4, 5, 0, time.UTC)
	cases := []any{ts, &ts, "2024-03-09", "2024-03-09T15:04:05Z", "2024-03-09 15:04:05", "09/03/2024"}
	for _, in := range cases {
		got, err := FormatDate(in)
		if err != nil {
			t.Fatalf("FormatDate(%v) error: %v", in, err)
		}
		if got != "2024-03-09" {
			t.Fatalf("FormatDate(%v) = %q", in, got)
		}
	}
}

func TestFormatDateRejectsGarbage(t *testing.T) {
	for _, in := range []any{"not a date", "", time.Time{}, 42} {
		if _, err := FormatDate(in); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("FormatDate(%v) expected ErrInvalidDate, got %v", in, err)
		}
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	start := time.Date(1999, time.December, 31, 23, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i += 7 {
		d := start.AddDate(0, 0, i)
		first, err := FormatDate(d)
		if err != nil {
			t.Fatalf("format: %v", err)
		}
		parsed, err := ParseDate(first)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		second, err := FormatDate(parsed)
		if err != nil {
			t.Fatalf("format parsed: %v", err)
		}
		if first != second {
			t.Fatalf("round trip mismatch %q vs %q", first, second)
		}
	}
}

func TestGatewayStatusToLocal(t *testing.T) {
	cases := map[string]enums.SubscriptionStatus{
		"ACTIVE":   enums.SubscriptionStatusActive,
		"inactive": enums.SubscriptionStatusInactive,
		"EXPIRED":  enums.SubscriptionStatusInactive,
		"OVERDUE":  enums.SubscriptionStatusOverdue,
		"CANCELED": enums.SubscriptionStatusCanceled,
		"PENDING":  enums.SubscriptionStatusPending,
		"WHATEVER": enums.SubscriptionStatusPending,
		"":         enums.SubscriptionStatusPending,
	}
	for in, want := range cases {
		if got := GatewayStatusToLocal(in); got != want {
			t.Fatalf("GatewayStatusToLocal(%q) = %q want %q", in, got, want)
		}
	}
}

func TestGatewayPaymentStatusToLocal(t *testing.T) {
	cases := map[string]enums.PaymentStatus{
		"RECEIVED":         enums.PaymentStatusConfirmed,
		"CONFIRMED":        enums.PaymentStatusConfirmed,
		"received-in-cash": enums.PaymentStatusConfirmed,
		"OVERDUE":          enums.PaymentStatusOverdue,
		"REFUNDED":         enums.PaymentStatusRefunded,
		"CANCELED":         enums.PaymentStatusCanceled,
		"FAILED":           enums.PaymentStatusFailed,
		"AWAITING_RISK":    enums.PaymentStatusPending,
	}
	for in, want := range cases {
		if got := GatewayPaymentStatusToLocal(in); got != want {
			t.Fatalf("GatewayPaymentStatusToLocal(%q) = %q want %q", in, got, want)
		}
	}
}

func TestRedactSensitiveMasksNestedFieldsWithoutMutating(t *testing.T) {
	payload := map[string]any{
		"customer": "cus_1",
		"remoteIp": "187.45.12.9",
		"creditCard": map[string]any{
			"holderName": "Ana Souza",
			"number":     "4111111111111111",
			"ccv":        "123",
		},
		"creditCardHolderInfo": map[string]any{
			"cpfCnpj": "12345678901",
		},
		"split": []any{map[string]any{"walletId": "w1"}},
	}

	redacted := RedactSensitive(payload).(map[string]any)
	card := redacted["creditCard"].(map[string]any)
	if card["number"] != "4111********1111" {
		t.Fatalf("unexpected card mask %v", card["number"])
	}
	if card["ccv"] != "***" {
		t.Fatalf("unexpected ccv mask %v", card["ccv"])
	}
	holder := redacted["creditCardHolderInfo"].(map[string]any)
	if holder["cpfCnpj"] != "123******01" {
		t.Fatalf("unexpected tax id mask %v", holder["cpfCnpj"])
	}
	if redacted["remoteIp"] != "187.***.***.***" {
		t.Fatalf("unexpected ip mask %v", redacted["remoteIp"])
	}
	if payload["creditCard"].(map[string]any)["number"] != "4111111111111111" {
		t.Fatalf("original payload was mutated")
	}
}

func TestRedactSensitiveHandlesStructs(t *testing.T) {
	type card struct {
		Number string `json:"number"`
	}
	out := RedactSensitive(struct {
		Card card `json:"creditCard"`
	}{Card: card{Number: "5555444433332222"}}).(map[string]any)
	if got := out["creditCard"].(map[string]any)["number"]; got != "5555********2222" {
		t.Fatalf("unexpected mask %v", got)
	}
}

func TestPruneDropsNilAndEmptyStrings(t *testing.T) {
	in := map[string]any{
		"keep":  "x",
		"empty": "",
		"nil":   nil,
		"zero":  0,
		"nested": map[string]any{
			"phone":  "",
			"number": "10",
		},
		"list": []any{nil, "", map[string]any{"a": nil, "b": "c"}},
	}
	out := Prune(in).(map[string]any)
	if _, ok := out["empty"]; ok {
		t.Fatalf("empty string should be pruned")
	}
	if _, ok := out["nil"]; ok {
		t.Fatalf("nil should be pruned")
	}
	if out["zero"] != 0 {
		t.Fatalf("zero values are kept")
	}
	nested := out["nested"].(map[string]any)
	if _, ok := nested["phone"]; ok || nested["number"] != "10" {
		t.Fatalf("unexpected nested %v", nested)
	}
	list := out["list"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected single list entry, got %v", list)
	}
	if _, ok := list[0].(map[string]any)["a"]; ok {
		t.Fatalf("nested nil in list should be pruned")
	}
}

func TestTaxIDHelpers(t *testing.T) {
	if !IsValidTaxID("123.456.789-01") {
		t.Fatalf("formatted cpf should be valid")
	}
	if !IsValidTaxID("12345678000199") {
		t.Fatalf("cnpj should be valid")
	}
	if IsValidTaxID("123.***.***-01") {
		t.Fatalf("masked value should be invalid")
	}
	if IsValidTaxID("1234567890") {
		t.Fatalf("10 digits should be invalid")
	}
	if PersonType("12345678000199") != PersonTypeCompany || PersonType("12345678901") != PersonTypeIndividual {
		t.Fatalf("unexpected person type inference")
	}
	masked := MaskTaxID("12345678901")
	if masked != "len=11 ***01" || strings.Contains(masked, "123") {
		t.Fatalf("unexpected log mask %q", masked)
	}
}
