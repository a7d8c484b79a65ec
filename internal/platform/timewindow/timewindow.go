// Package timewindow provides the calendar-boundary arithmetic used by the
// analytics engine: day, week, and month windows computed relative to a
// caller-supplied instant. All functions are pure.
package timewindow

import (
	"fmt"
	"time"
)

// DayBounds returns the first and last instant of the day containing now.
// Bounds are inclusive: [00:00:00, 23:59:59.999999999].
func DayBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// WeekBounds returns the bounds of the week containing now. Weeks start on
// Monday regardless of locale: Monday 00:00:00 through Sunday
// 23:59:59.999999999.
func WeekBounds(now time.Time) (time.Time, time.Time) {
	weekday := int(now.Weekday())
	if weekday == 0 { // time.Sunday
		weekday = 7
	}
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monday := day.AddDate(0, 0, -(weekday - 1))
	sundayEnd := monday.AddDate(0, 0, 7).Add(-time.Nanosecond)
	return monday, sundayEnd
}

// WeekBoundsOffset returns the bounds of the week n weeks before the week
// containing now. n = 0 is the current week.
func WeekBoundsOffset(now time.Time, n int) (time.Time, time.Time) {
	return WeekBounds(now.AddDate(0, 0, -7*n))
}

// MonthBounds returns the first and last instant of the given calendar month
// in loc. A month outside [1,12] is a caller error, never clamped.
func MonthBounds(year, month int, loc *time.Location) (time.Time, time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end, nil
}

// MonthBoundsAt returns the bounds of the calendar month containing now.
func MonthBoundsAt(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// PreviousMonth returns the calendar month immediately before (year, month).
// Direct arithmetic avoids the day-normalization surprises of AddDate on
// month-end dates.
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}
