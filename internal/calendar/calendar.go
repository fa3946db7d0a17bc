// Package calendar holds day-granularity date helpers. All dates are
// normalized to midnight UTC so equality and ordering ignore clock time.
package calendar

import (
	"fmt"
	"time"
)

// Layout is the on-disk and CLI date format.
const Layout = "2006-01-02"

// Date returns the normalized date, carrying overflow the way time.Date does.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize drops the clock and location of t.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d)
}

// Parse reads a date in Layout.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q want format %q: %w", s, Layout, err)
	}
	return t, nil
}

// MustParse is Parse for literals; it panics on bad input.
func MustParse(s string) time.Time {
	t, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return t
}

// DaysIn returns the number of days in month of year.
func DaysIn(year int, month time.Month) int {
	return Date(year, month+1, 0).Day()
}

// Clamp returns day of the given month, pulled back to the month's last
// day when the month is shorter. Month overflow rolls into the year.
func Clamp(year int, month time.Month, day int) time.Time {
	first := Date(year, month, 1)
	year, month = first.Year(), first.Month()
	if last := DaysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return Date(year, month, day)
}

// AddMonths moves t by n months keeping its day of month where possible.
// Jan 31 + 1 month is Feb 28 (or 29), not Mar 3.
func AddMonths(t time.Time, n int) time.Time {
	return Clamp(t.Year(), t.Month()+time.Month(n), t.Day())
}

// AddDays moves t by n days.
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return Date(y, m, d+n)
}

// DaysBetween returns the whole days from a to b (negative when b is earlier).
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)) / (24 * time.Hour))
}

// MonthsBetween returns the calendar-month distance from a to b, ignoring days.
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Format renders t in Layout; the zero time renders as "".
func Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(Layout)
}
