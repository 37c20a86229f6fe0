package utils

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate parses an ISO 8601 date (YYYY-MM-DD, or RFC3339 with the time part ignored)
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatTimestamp formats a timestamp as RFC3339
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseClock validates a wall-clock time and normalizes it to "HH:MM".
// Accepts "15:04" and "15:04:05" (seconds are dropped).
func ParseClock(s string) (string, error) {
	if t, err := time.Parse("15:04", s); err == nil {
		return t.Format("15:04"), nil
	}
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format("15:04"), nil
	}
	return "", fmt.Errorf("invalid time %q", s)
}
