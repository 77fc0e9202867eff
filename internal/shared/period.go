package shared

import (
	"errors"
	"regexp"
	"time"
)

var monthRegex = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ErrInvalidMonth indicates a period string that is not YYYY-MM.
var ErrInvalidMonth = errors.New("month must be formatted YYYY-MM")

// ValidMonth reports whether month is a well-formed YYYY-MM period.
func ValidMonth(month string) bool {
	if !monthRegex.MatchString(month) {
		return false
	}
	_, err := time.Parse("2006-01", month)
	return err == nil
}

// ParseMonth parses a YYYY-MM period into the first instant of the month.
func ParseMonth(month string) (time.Time, error) {
	if !monthRegex.MatchString(month) {
		return time.Time{}, ErrInvalidMonth
	}
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, ErrInvalidMonth
	}
	return t, nil
}

// MonthRange returns [start, end) bounds for a YYYY-MM period.
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := ParseMonth(month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}
