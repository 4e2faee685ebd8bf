package habit

import "time"

// StripTime truncates a time to midnight of its calendar day, preserving the
// location. Check-in dates are always stored stripped.
func StripTime(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayNumber maps a time to its calendar day count since the unix epoch,
// ignoring the time-of-day and any DST shenanigans in the local zone.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / (24 * 60 * 60))
}

// DaysBetween returns the count of calendar days from start to end, negative
// if end precedes start.
func DaysBetween(start, end time.Time) int {
	return dayNumber(end) - dayNumber(start)
}

// AddDays returns the date offset calendar days after t (before, if negative).
func AddDays(t time.Time, offset int) time.Time {
	return StripTime(t).AddDate(0, 0, offset)
}

// WeekdayOf is the canonical weekday-of-date function: the offset of the
// date's weekday with Sunday=0. All scheduling and day-state code must use
// this rather than deriving weekdays from day offsets.
func WeekdayOf(t time.Time) int {
	return int(t.Weekday())
}
