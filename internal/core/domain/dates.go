package domain

import (
	"fmt"
	"strings"
	"time"
)

// Date layouts shared with the mobile client
const (
	APIDateLayout     = "2006/01/02" // yyyy/MM/dd, used in request and response bodies
	DisplayDateLayout = "Jan 2, 2006"
)

const day = 24 * time.Hour

// Clock supplies "now" for gestational-age math. Injected everywhere so that
// tests are deterministic.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

// CalendarDay returns midnight UTC of the calendar day t falls on in its own
// location. All day arithmetic is done on these values so that timezone
// offsets and DST transitions never shift a date by one.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the calendar day n days after t (n may be negative)
func AddDays(t time.Time, n int) time.Time {
	return CalendarDay(t).AddDate(0, 0, n)
}

// AddWeeks returns the calendar day n weeks after t
func AddWeeks(t time.Time, n int) time.Time {
	return AddDays(t, 7*n)
}

// DaysBetween returns the whole number of calendar days from `from` to `to`.
// Negative when `to` is before `from`.
func DaysBetween(from, to time.Time) int {
	return int(CalendarDay(to).Sub(CalendarDay(from)) / day)
}

// IsAfterToday reports whether t falls on a calendar day after clock's today
func IsAfterToday(t time.Time, clock Clock) bool {
	return CalendarDay(t).After(CalendarDay(clock.Now()))
}

// IsToday reports whether t falls on clock's current calendar day
func IsToday(t time.Time, clock Clock) bool {
	return CalendarDay(t).Equal(CalendarDay(clock.Now()))
}

// FormatAPIDate formats the calendar day of t as yyyy/MM/dd
func FormatAPIDate(t time.Time) string {
	return t.Format(APIDateLayout)
}

// ParseAPIDate parses a yyyy/MM/dd string into a calendar day (midnight UTC).
// Formatting the result with FormatAPIDate yields the input again.
func ParseAPIDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: date is empty", ErrInvalidInput)
	}
	t, err := time.ParseInLocation(APIDateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed date %q (expected yyyy/MM/dd)", ErrInvalidInput, s)
	}
	return t, nil
}

// FormatDisplayDate formats t for user-facing text, e.g. "Mar 7, 2025"
func FormatDisplayDate(t time.Time) string {
	return t.Format(DisplayDateLayout)
}
