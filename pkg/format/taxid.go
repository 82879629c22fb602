package format

import (
	"strconv"
	"strings"
)

const (
	// PersonTypeIndividual is the gateway person type for 11-digit tax ids.
	PersonTypeIndividual = "FISICA"
	// PersonTypeCompany is the gateway person type for 14-digit tax ids.
	PersonTypeCompany = "JURIDICA"
)

// DigitsOnly strips every non-digit rune.
func DigitsOnly(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidTaxID reports whether the digits form an 11 or 14 digit tax id.
func IsValidTaxID(value string) bool {
	if IsMasked(value) {
		return false
	}
	digits := DigitsOnly(value)
	return len(digits) == 11 || len(digits) == 14
}

// IsMasked reports whether a value was masked by an upstream system.
func IsMasked(value string) bool {
	return strings.ContainsAny(value, "*•")
}

// PersonType infers the gateway person type from the tax id length.
func PersonType(taxID string) string {
	if len(DigitsOnly(taxID)) == 14 {
		return PersonTypeCompany
	}
	return PersonTypeIndividual
}

// MaskTaxID renders a tax id for logs as its length and last two digits.
func MaskTaxID(value string) string {
	digits := DigitsOnly(value)
	if digits == "" {
		return "len=0"
	}
	tail := digits
	if len(digits) > 2 {
		tail = digits[len(digits)-2:]
	}
	return "len=" + strconv.Itoa(len(digits)) + " ***" + tail
}
