package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is how reading timestamps are stored and logged.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar-day format used for query windows.
const DateLayout = "2006-01-02"

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	DateLayout,
}

// ParseTimestamp accepts the timestamp spellings found in meter tables and
// in API requests. Zone-less values are read as UTC and zoned ones are
// converted to it, since stored timestamps are UTC wall clock.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// ParseDate parses a YYYY-MM-DD calendar day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return t, nil
}

// Day truncates t to the start of its calendar day, keeping its location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// NextDay is the midnight that ends t's calendar day. Used as an exclusive
// bound so rows with fractional seconds late in the day are kept.
func NextDay(t time.Time) time.Time {
	return Day(t).AddDate(0, 0, 1)
}
