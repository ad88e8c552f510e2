package model

import (
	"fmt"
	"time"
)

// Layouts used for civil dates on the wire and in storage.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// CivilDate drops the clock and zone from t, keeping the calendar day as
// written in t's own location. No zone conversion happens.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MonthOf truncates t to the first day of its calendar month.
func MonthOf(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

// IsMonthStart reports whether t falls on the first day of a month.
func IsMonthStart(t time.Time) bool {
	return !t.IsZero() && t.Day() == 1
}

// ParseDate parses a YYYY-MM-DD civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

// ParseMonth accepts YYYY-MM or a YYYY-MM-01 date and returns the first day
// of that month.
func ParseMonth(s string) (time.Time, error) {
	if t, err := time.Parse(MonthLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	if !IsMonthStart(t) {
		return time.Time{}, fmt.Errorf("invalid month %q: must be the first day of a month", s)
	}
	return t, nil
}
