// Package convert holds the unit and format conversions the ad networks expect.
package convert

import (
	"fmt"
	"strings"
	"time"
)

// microsPerMinorUnit converts a minor currency unit (cent) to micros:
// one major unit is 100 minor units and 1,000,000 micros.
const microsPerMinorUnit = 10_000

// MinorToMicro converts an amount in minor units to micros.
func MinorToMicro(minor int64) int64 {
	return minor * microsPerMinorUnit
}

// accepted input layouts, tried in order.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseTime parses an ISO 8601 date or date-time. Values without a zone are UTC.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO 8601 time %q", value)
}

// FormatDate renders value as YYYY-MM-DD. Empty input yields empty output.
func FormatDate(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	t, err := ParseTime(value)
	if err != nil {
		return "", err
	}
	return t.Format(time.DateOnly), nil
}

// FormatDateTime renders value as RFC 3339. Empty input yields empty output.
func FormatDateTime(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	t, err := ParseTime(value)
	if err != nil {
		return "", err
	}
	return t.Format(time.RFC3339), nil
}
