// Package birthday normalizes user-supplied birthday strings into
// calendar dates pinned to a fixed reference year.
package birthday

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

// ReferenceYear is a leap year, so 29.02 birthdays stay representable
// and all normalized dates are comparable.
const ReferenceYear = 2000

// ErrInvalidFormat is returned when a string cannot be parsed into a
// valid day/month pair.
var ErrInvalidFormat = errors.New("invalid birthday format")

// dayMonthPattern matches a two-digit day, any single separator and a
// two-digit month at the start of the input. Trailing input is ignored.
var dayMonthPattern = regexp.MustCompile(`^(\d{2}).(\d{2})`)

// Parse extracts a birthday from a "DD<sep>MM" string and returns it as
// a date in the reference year. Inputs that do not match the pattern or
// do not form a real calendar date fail with ErrInvalidFormat.
func Parse(raw string) (time.Time, error) {
	m := dayMonthPattern.FindStringSubmatch(raw)
	if m == nil {
		return time.Time{}, ErrInvalidFormat
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])

	date := time.Date(ReferenceYear, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date silently normalizes out-of-range values (31.04 becomes
	// 01.05), so reject anything that did not survive round-tripping.
	if date.Day() != day || date.Month() != time.Month(month) {
		return time.Time{}, ErrInvalidFormat
	}

	return date, nil
}

// IsValid reports whether a birthday can be extracted from raw.
func IsValid(raw string) bool {
	_, err := Parse(raw)
	return err == nil
}

// Format renders a normalized birthday as "DD.MM".
func Format(date time.Time) string {
	return date.Format("02.01")
}

// Today returns the current calendar day pinned to the reference year,
// for equality comparison against stored birthdays.
func Today() time.Time {
	now := time.Now()
	return time.Date(ReferenceYear, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
