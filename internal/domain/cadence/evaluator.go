// internal/domain/cadence/evaluator.go
package cadence

import (
	"time"
)

// NextOccurrences computes the next count occurrence dates of spec on or
// after the given date. The result is ordered, finite and date-only; the
// computation is pure and may be called from any goroutine without locking.
func NextOccurrences(spec Spec, after time.Time, count int) ([]time.Time, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}

	dates := make([]time.Time, 0, count)
	current := firstOnOrAfter(spec, Date(after))
	for {
		dates = append(dates, current)
		if len(dates) == count {
			return dates, nil
		}
		current = following(spec, current)
	}
}

// NextAfter returns the first occurrence strictly after the given date. For
// periodic kinds the given date is treated as the previous occurrence, so the
// period is measured from its month anchor.
func NextAfter(spec Spec, after time.Time) (time.Time, error) {
	if err := spec.Validate(); err != nil {
		return time.Time{}, err
	}
	return following(spec, Date(after)), nil
}

// OccurrencesWithin returns every occurrence date in the inclusive window
// [from, to]. An inverted window yields no dates.
func OccurrencesWithin(spec Spec, from, to time.Time) ([]time.Time, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	end := Date(to)

	var dates []time.Time
	current := firstOnOrAfter(spec, Date(from))
	for !current.After(end) {
		dates = append(dates, current)
		current = following(spec, current)
	}
	return dates, nil
}

// firstOnOrAfter resolves the first occurrence date on or after the date-only
// cursor. The spec must already be validated.
func firstOnOrAfter(spec Spec, cursor time.Time) time.Time {
	switch spec.Kind {
	case KindWeekly:
		offset := (int(spec.Weekday) - int(cursor.Weekday()) + 7) % 7
		return cursor.AddDate(0, 0, offset)

	case KindMonthlyDayOfMonth:
		year, month := cursor.Year(), cursor.Month()
		for {
			candidate := clampedDayOfMonth(year, month, spec.DayOfMonth)
			if !candidate.Before(cursor) {
				return candidate
			}
			year, month = nextMonth(year, month)
		}

	case KindMonthlyNthWeekday:
		year, month := cursor.Year(), cursor.Month()
		for {
			candidate := nthWeekdayOfMonth(year, month, spec.Nth, spec.Weekday)
			if !candidate.IsZero() && !candidate.Before(cursor) {
				return candidate
			}
			year, month = nextMonth(year, month)
		}

	default: // KindPeriodicNthWeekday
		// The anchor date itself steps by whole periods; only the month it
		// lands in matters for resolving the candidate.
		anchor := monthStart(cursor)
		for {
			candidate := nthWeekdayOfMonth(anchor.Year(), anchor.Month(), spec.Nth, spec.Weekday)
			if !candidate.IsZero() && !candidate.Before(cursor) {
				return candidate
			}
			anchor = anchor.AddDate(0, 0, spec.PeriodDays)
		}
	}
}

// following resolves the occurrence after prev. For the periodic kind the
// candidate month advances by PeriodDays measured in days from prev's month
// anchor rather than by one calendar month; the other kinds reduce to the
// first occurrence on or after the next day.
func following(spec Spec, prev time.Time) time.Time {
	if spec.Kind != KindPeriodicNthWeekday {
		return firstOnOrAfter(spec, prev.AddDate(0, 0, 1))
	}

	anchor := monthStart(prev)
	for {
		anchor = anchor.AddDate(0, 0, spec.PeriodDays)
		candidate := nthWeekdayOfMonth(anchor.Year(), anchor.Month(), spec.Nth, spec.Weekday)
		if !candidate.IsZero() && candidate.After(prev) {
			return candidate
		}
	}
}

// clampedDayOfMonth resolves the configured day number within a month,
// clamping to the month's last day when the month is too short (the 31st in
// February becomes Feb 28/29). Clamping is an explicit policy, not an error.
func clampedDayOfMonth(year int, month time.Month, day int) time.Time {
	last := lastDayOfMonth(year, month)
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// nthWeekdayOfMonth resolves the nth occurrence of a weekday within a month.
// NthLast walks back from the month's final day. A zero time is returned when
// the month has no nth occurrence (a 5th weekday in a 4-occurrence month).
func nthWeekdayOfMonth(year int, month time.Month, nth Nth, weekday time.Weekday) time.Time {
	if nth == NthLast {
		last := time.Date(year, month, lastDayOfMonth(year, month), 0, 0, 0, 0, time.UTC)
		offset := (int(last.Weekday()) - int(weekday) + 7) % 7
		return last.AddDate(0, 0, -offset)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	candidate := first.AddDate(0, 0, offset+7*(int(nth)-1))
	if candidate.Month() != month {
		return time.Time{}
	}
	return candidate
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func nextMonth(year int, month time.Month) (int, time.Month) {
	if month == time.December {
		return year + 1, time.January
	}
	return year, month + 1
}
