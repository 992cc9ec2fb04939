// Package period defines the opaque time bucket used to key progress
// counters. Periods are calendar months rendered as "YYYY-MM" and order
// lexicographically, so they can be compared and sorted as plain strings.
package period

import (
	"errors"
	"fmt"
	"time"
)

// Key identifies a single period, e.g. "2025-08".
type Key string

const layout = "2006-01"

var ErrInvalidPeriod = errors.New("invalid period key, expected YYYY-MM")

// Current returns the period containing the given instant. Callers resolve
// the wall clock once at the boundary and pass periods explicitly below.
func Current(now time.Time) Key {
	return Key(now.Format(layout))
}

// Next returns the successor period, wrapping December into January of the
// following year.
func Next(p Key) (Key, error) {
	t, err := time.Parse(layout, string(p))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
	return Key(t.AddDate(0, 1, 0).Format(layout)), nil
}

// Parse validates a raw string as a period key.
func Parse(s string) (Key, error) {
	if _, err := time.Parse(layout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
	return Key(s), nil
}

func (p Key) String() string {
	return string(p)
}
