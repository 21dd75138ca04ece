package entitlement

import "time"

// AddMonths adds n calendar months to t, clamping the day to the last valid
// day of the target month: Jan 31 + 1 month is Feb 28 (Feb 29 in leap years).
// Wall-clock time and location are preserved.
func AddMonths(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, minute, sec := t.Clock()

	target := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(target.Year(), target.Month(), t.Location()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, hour, minute, sec, t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DayWindow returns the inclusive [start, end] bounds of the calendar day that
// is offset days after t's day in loc.
func DayWindow(t time.Time, loc *time.Location, offset int) (time.Time, time.Time) {
	start := StartOfDay(t, loc).AddDate(0, 0, offset)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}
