// Package calendar holds the date arithmetic used to index project weeks.
// All functions work on local calendar dates: the clock time and location of
// a time.Time are ignored.
package calendar

import "time"

const DateLayout = "2006-01-02"

// DayNumber returns the number of civil days between 1970-01-01 and the
// calendar date of t.
func DayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// DaysBetween returns b - a in whole calendar days.
func DaysBetween(a, b time.Time) int {
	return DayNumber(b) - DayNumber(a)
}

// DateOnly strips the clock and location from t.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FirstWeekEnd returns the first occurrence of weekEnd on or after start.
func FirstWeekEnd(start time.Time, weekEnd time.Weekday) time.Time {
	offset := (int(weekEnd) - int(start.Weekday()) + 7) % 7
	return DateOnly(start).AddDate(0, 0, offset)
}

// WeekNumberOf maps date to its 1-based project week. Week 1 runs from
// projectStart through the first weekEnd on or after it; every later week is
// seven days long. Dates on or before the start, and zero dates, map to 1.
func WeekNumberOf(date, projectStart time.Time, weekEnd time.Weekday) int {
	if date.IsZero() || projectStart.IsZero() {
		return 1
	}
	if weekEnd < time.Sunday || weekEnd > time.Saturday {
		return 1
	}
	if DayNumber(date) <= DayNumber(projectStart) {
		return 1
	}
	diff := DaysBetween(FirstWeekEnd(projectStart, weekEnd), date)
	if diff <= 0 {
		return 1
	}
	return 1 + (diff+6)/7
}

// Week binds a project start and week-end day so callers do not thread both
// values through every call.
type Week struct {
	Start   time.Time
	WeekEnd time.Weekday
}

// NewWeek returns a Week for the given project start and week-end day.
func NewWeek(start time.Time, weekEnd time.Weekday) Week {
	return Week{Start: DateOnly(start), WeekEnd: weekEnd}
}

// Of returns the week number of date.
func (w Week) Of(date time.Time) int {
	return WeekNumberOf(date, w.Start, w.WeekEnd)
}

// Bounds returns the first and last date of week n, clipped to the project
// start for week 1.
func (w Week) Bounds(n int) (time.Time, time.Time) {
	firstEnd := FirstWeekEnd(w.Start, w.WeekEnd)
	if n <= 1 {
		return w.Start, firstEnd
	}
	end := firstEnd.AddDate(0, 0, 7*(n-1))
	return end.AddDate(0, 0, -6), end
}

// EachDay calls fn for every date in [from, to], inclusive. It stops early
// when fn returns false.
func EachDay(from, to time.Time, fn func(day time.Time) bool) {
	from, to = DateOnly(from), DateOnly(to)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !fn(d) {
			return
		}
	}
}
