package format

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only date shape the gateway accepts.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when an input cannot be read as a date.
var ErrInvalidDate = errors.New("invalid date")

var parseLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	DateLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"02/01/2006",
}

// FormatDate renders a time.Time, *time.Time or parseable string as YYYY-MM-DD in UTC.
func FormatDate(input any) (string, error) {
	switch v := input.(type) {
	case time.Time:
		if v.IsZero() {
			return "", fmt.Errorf("%w: zero time", ErrInvalidDate)
		}
		return v.UTC().Format(DateLayout), nil
	case *time.Time:
		if v == nil {
			return "", fmt.Errorf("%w: nil time", ErrInvalidDate)
		}
		return FormatDate(*v)
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return "", err
		}
		return parsed.UTC().Format(DateLayout), nil
	case *string:
		if v == nil {
			return "", fmt.Errorf("%w: nil string", ErrInvalidDate)
		}
		return FormatDate(*v)
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidDate, input)
	}
}

// ParseDate reads the common date layouts the gateway and API clients send.
func ParseDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}
