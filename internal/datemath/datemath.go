// Package datemath implements calendar-date arithmetic for budget cycles:
// inclusive day counts, duration advancement and cycle-window computation.
//
// All dates are treated as calendar days; callers should pass times at UTC
// midnight (see Date).
package datemath

import (
	"fmt"
	"strings"
	"time"
)

// Duration is the length of one budget cycle.
type Duration string

const (
	Day       Duration = "DAY"
	Week      Duration = "WEEK"
	Fortnight Duration = "FORTNIGHT"
	Month     Duration = "MONTH"
	Year      Duration = "YEAR"
)

// ParseDuration maps the wire representation of a recurrence duration to its
// variant, independent of any UI ordering. Matching is case-insensitive.
func ParseDuration(s string) (Duration, error) {
	switch Duration(strings.ToUpper(strings.TrimSpace(s))) {
	case Day:
		return Day, nil
	case Week:
		return Week, nil
	case Fortnight:
		return Fortnight, nil
	case Month:
		return Month, nil
	case Year:
		return Year, nil
	}
	return "", fmt.Errorf("unknown recurrence duration: %q", s)
}

// Date returns the calendar day of t at UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time-of-day portion of t, keeping its calendar day in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return Date(y, m, d)
}

// DaysBetweenInclusive counts the days from start to end with both endpoints
// included, so DaysBetweenInclusive(d, d) == 1. It fails if end precedes start.
func DaysBetweenInclusive(start, end time.Time) (int, error) {
	start = Truncate(start)
	end = Truncate(end)
	if end.Before(start) {
		return 0, fmt.Errorf("end date %s precedes start date %s",
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// AdvanceByDuration advances date by count whole durations. DAY, WEEK and
// FORTNIGHT advance by a fixed day count; MONTH and YEAR advance on the
// calendar, clamping the day of month to the shorter target month
// (Jan 31 + 1 MONTH = Feb 28/29).
func AdvanceByDuration(date time.Time, d Duration, count int) time.Time {
	date = Truncate(date)
	switch d {
	case Day:
		return date.AddDate(0, 0, count)
	case Week:
		return date.AddDate(0, 0, 7*count)
	case Fortnight:
		return date.AddDate(0, 0, 14*count)
	case Month:
		return addMonthsClamped(date, count)
	case Year:
		return addMonthsClamped(date, 12*count)
	}
	return date
}

// addMonthsClamped adds calendar months keeping the day of month, clamped to
// the last day of the target month. time.AddDate is unsuitable here: it
// normalizes Jan 31 + 1 month to Mar 2/3.
func addMonthsClamped(date time.Time, months int) time.Time {
	y, m, d := date.Date()
	first := Date(y, m+time.Month(months), 1)
	lastDay := first.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return Date(first.Year(), first.Month(), d)
}

// CurrentCycleWindow computes the [cycleStart, cycleEnd] window of the cycle
// containing today, advancing startDate by whole durations. The window of
// cycle k is [advance(start, k), advance(start, k+1) - 1 day].
//
// If today precedes startDate the first window is returned. If recurring is
// false, only the first window is ever valid; ok is false once today has
// passed its end. An unknown duration yields no window: it would never
// advance, so the rollover loop below could not terminate.
func CurrentCycleWindow(startDate time.Time, d Duration, recurring bool, today time.Time) (cycleStart, cycleEnd time.Time, ok bool) {
	if _, err := ParseDuration(string(d)); err != nil {
		return time.Time{}, time.Time{}, false
	}
	startDate = Truncate(startDate)
	today = Truncate(today)

	cycleStart = startDate
	cycleEnd = AdvanceByDuration(startDate, d, 1).AddDate(0, 0, -1)
	if !recurring {
		if today.After(cycleEnd) {
			return time.Time{}, time.Time{}, false
		}
		return cycleStart, cycleEnd, true
	}
	for k := 1; today.After(cycleEnd); k++ {
		cycleStart = AdvanceByDuration(startDate, d, k)
		cycleEnd = AdvanceByDuration(startDate, d, k+1).AddDate(0, 0, -1)
	}
	return cycleStart, cycleEnd, true
}
