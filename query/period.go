package query

import "time"

// PeriodRange returns the inclusive [start, end] dates of a named period
// ending today.
func PeriodRange(period string, now time.Time) (time.Time, time.Time) {
	var start time.Time
	switch period {
	case "day", "today":
		start = now
	case "week":
		start = now.AddDate(0, 0, -6) // today + previous 6 days
	case "month":
		start = monthsBack(now, 1)
	case "year":
		start = monthsBack(now, 12)
	default:
		start = now.AddDate(0, 0, -6)
	}
	return start, now
}

// monthsBack is the day after the same date n months earlier. The day is
// clamped to the length of the earlier month, so that 03-31 goes back to
// 02-29 (or 02-28) and not past it.
func monthsBack(now time.Time, n int) time.Time {
	y, m, d := now.Date()
	first := time.Date(y, m-time.Month(n), 1, 0, 0, 0, 0, now.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
