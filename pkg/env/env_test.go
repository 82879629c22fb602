package env

import "testing"

func TestFirstPrefersEarlierKeys(t *testing.T) {
	t.Setenv("MARKETBILL_TEST_A", "")
	t.Setenv("MARKETBILL_TEST_B", " console ")
	t.Setenv("MARKETBILL_TEST_C", "json")

	if got := First("fallback", "MARKETBILL_TEST_A", "MARKETBILL_TEST_B", "MARKETBILL_TEST_C"); got != "console" {
		t.Fatalf("expected console, got %q", got)
	}
}

func TestFirstFallsBack(t *testing.T) {
	if got := First("json", "MARKETBILL_TEST_UNSET"); got != "json" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
