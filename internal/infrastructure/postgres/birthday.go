package postgres

import "time"

// legacyBirthdayWindow reproduces the historical lookup: birthdays in the
// current month whose day-of-month is at most today+days+1. The window never
// crosses a month boundary, so a birthday early next month is missed when the
// range should roll over; the year is ignored entirely. Known defect, kept on
// purpose because dependents compensate for it. The calendar-accurate
// alternative below handles rollover.
func legacyBirthdayWindow(today time.Time, days int) (month int, maxDay int) {
	return int(today.Month()), today.Day() + days + 1
}

type monthDay struct {
	Month int
	Day   int
}

// calendarBirthdayWindow returns the (month, day) pairs covered by the next
// `days` days starting today, inclusive. Year still ignored: birthdays repeat
// annually.
func calendarBirthdayWindow(today time.Time, days int) []monthDay {
	out := make([]monthDay, 0, days+1)
	seen := make(map[monthDay]struct{}, days+1)
	for i := 0; i <= days; i++ {
		d := today.AddDate(0, 0, i)
		md := monthDay{Month: int(d.Month()), Day: d.Day()}
		if _, ok := seen[md]; ok {
			continue
		}
		seen[md] = struct{}{}
		out = append(out, md)
	}
	return out
}
