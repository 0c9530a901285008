// Package util provides calendar-day helpers for date bucketing.
//
// All bucketing uses the device's local calendar day, matching how the
// rest of the app reasons about "today". Day boundaries therefore shift
// when the device timezone changes.
package util

import "time"

// dayKeyFormat is the canonical local-day bucket key.
const dayKeyFormat = "2006-01-02"

// DayKey returns the local calendar-day bucket key for t (YYYY-MM-DD).
func DayKey(t time.Time) string {
	return t.Local().Format(dayKeyFormat)
}

// StartOfDay returns midnight at the start of t's local calendar day.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Local().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// EndOfDay returns the last nanosecond of t's local calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfWeek returns midnight on the Sunday beginning t's week.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// EndOfWeek returns the last nanosecond of the Saturday ending t's week.
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// StartOfMonth returns midnight on the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	year, month, _ := t.Local().Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
}

// EndOfMonth returns the last nanosecond of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// DaysAgo returns t shifted back by n calendar days.
func DaysAgo(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, -n)
}

// SameDay reports whether a and b fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return DayKey(a) == DayKey(b)
}

// EachDay returns the start of every local calendar day from start through
// end inclusive. Returns nil if end is before start.
func EachDay(start, end time.Time) []time.Time {
	first := StartOfDay(start)
	last := StartOfDay(end)
	if last.Before(first) {
		return nil
	}
	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
