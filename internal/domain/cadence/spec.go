// internal/domain/cadence/spec.go
package cadence

import (
	"fmt"
	"time"
)

// ErrInvalidSpec indicates a malformed recurrence configuration. It is raised
// at validation time, before persistence, and is never retried automatically.
var ErrInvalidSpec = fmt.Errorf("invalid cadence spec")

// Kind selects which recurrence pattern a Spec describes.
type Kind string

const (
	// KindWeekly repeats on a fixed weekday every 7 days.
	KindWeekly Kind = "weekly"
	// KindMonthlyDayOfMonth repeats on a fixed day number each calendar month,
	// clamped to the last day of months that are too short.
	KindMonthlyDayOfMonth Kind = "monthly_day_of_month"
	// KindMonthlyNthWeekday repeats on the Nth (or last) weekday of each
	// calendar month, e.g. the 2nd Tuesday.
	KindMonthlyNthWeekday Kind = "monthly_nth_weekday"
	// KindPeriodicNthWeekday resolves the Nth weekday like
	// KindMonthlyNthWeekday, but the candidate month advances by PeriodDays
	// from the previous occurrence's month anchor rather than by one
	// calendar month. Used for custom periods like "every 6 weeks on the
	// 2nd Thursday".
	KindPeriodicNthWeekday Kind = "periodic_nth_weekday"
)

// Nth identifies which occurrence of a weekday within a month is meant.
// Values 1 through 5 count from the start of the month; NthLast selects the
// final occurrence regardless of whether it is the 4th or 5th.
type Nth int

const NthLast Nth = -1

// Spec describes how often something recurs. It is a tagged union over Kind:
// exactly the fields relevant to the Kind must be populated, and Validate
// enforces that before a Spec may be persisted or evaluated.
//
// A Spec has no identity of its own; it is embedded in the team or template
// that owns it.
type Spec struct {
	Kind Kind

	// Weekday applies to weekly, monthly_nth_weekday and periodic_nth_weekday.
	Weekday time.Weekday
	// Nth applies to monthly_nth_weekday and periodic_nth_weekday.
	Nth Nth
	// DayOfMonth applies to monthly_day_of_month only (1..31).
	DayOfMonth int
	// PeriodDays applies to periodic_nth_weekday only, e.g. 42 for every
	// six weeks.
	PeriodDays int

	// Hour and Minute are the local time of day of each occurrence,
	// interpreted in Timezone.
	Hour   int
	Minute int
	// Timezone is an IANA zone name, e.g. "Europe/Berlin". Empty means UTC.
	Timezone string

	DurationMinutes int
}

// Validate checks that the Spec is complete and self-consistent for its Kind.
// An incomplete spec is an error, not a silent default.
func (s Spec) Validate() error {
	switch s.Kind {
	case KindWeekly:
		// time.Weekday zero value is Sunday, which is a legitimate choice,
		// so there is nothing weekday-specific to reject here.
		if s.Nth != 0 || s.DayOfMonth != 0 || s.PeriodDays != 0 {
			return fmt.Errorf("%w: %s takes only a weekday, got nth=%d dayOfMonth=%d periodLengthDays=%d",
				ErrInvalidSpec, s.Kind, s.Nth, s.DayOfMonth, s.PeriodDays)
		}
	case KindMonthlyDayOfMonth:
		if s.DayOfMonth < 1 || s.DayOfMonth > 31 {
			return fmt.Errorf("%w: %s requires dayOfMonth in 1..31, got %d", ErrInvalidSpec, s.Kind, s.DayOfMonth)
		}
		if s.Nth != 0 || s.PeriodDays != 0 {
			return fmt.Errorf("%w: %s takes only dayOfMonth, got nth=%d periodLengthDays=%d",
				ErrInvalidSpec, s.Kind, s.Nth, s.PeriodDays)
		}
	case KindMonthlyNthWeekday:
		if err := validateNth(s.Nth); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidSpec, s.Kind, err)
		}
		if s.DayOfMonth != 0 || s.PeriodDays != 0 {
			return fmt.Errorf("%w: %s takes only nth and weekday, got dayOfMonth=%d periodLengthDays=%d",
				ErrInvalidSpec, s.Kind, s.DayOfMonth, s.PeriodDays)
		}
	case KindPeriodicNthWeekday:
		if err := validateNth(s.Nth); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidSpec, s.Kind, err)
		}
		if s.PeriodDays < 1 {
			return fmt.Errorf("%w: %s requires periodLengthDays >= 1, got %d", ErrInvalidSpec, s.Kind, s.PeriodDays)
		}
		if s.DayOfMonth != 0 {
			return fmt.Errorf("%w: %s does not take dayOfMonth, got %d", ErrInvalidSpec, s.Kind, s.DayOfMonth)
		}
	case "":
		return fmt.Errorf("%w: kind is not set", ErrInvalidSpec)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSpec, s.Kind)
	}

	if s.Weekday < time.Sunday || s.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday %d out of range", ErrInvalidSpec, s.Weekday)
	}
	if s.Hour < 0 || s.Hour > 23 || s.Minute < 0 || s.Minute > 59 {
		return fmt.Errorf("%w: time of day %02d:%02d out of range", ErrInvalidSpec, s.Hour, s.Minute)
	}
	if s.DurationMinutes < 0 {
		return fmt.Errorf("%w: durationMinutes must not be negative, got %d", ErrInvalidSpec, s.DurationMinutes)
	}
	if s.Timezone != "" {
		if _, err := time.LoadLocation(s.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrInvalidSpec, s.Timezone)
		}
	}
	return nil
}

func validateNth(n Nth) error {
	if n == NthLast {
		return nil
	}
	if n < 1 || n > 5 {
		return fmt.Errorf("nth must be 1..5 or last, got %d", n)
	}
	return nil
}

// Location resolves the spec's timezone, defaulting to UTC.
func (s Spec) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidSpec, s.Timezone)
	}
	return loc, nil
}

// InstantFor converts a resolved occurrence date into the absolute instant at
// which the occurrence starts, applying the spec's time of day and timezone.
func (s Spec) InstantFor(date time.Time) (time.Time, error) {
	loc, err := s.Location()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), s.Hour, s.Minute, 0, 0, loc), nil
}

// Date truncates t to a date-only value (midnight UTC). All occurrence dates
// produced by the evaluator and all uniqueness checks use this normal form so
// that a later time-of-day change cannot defeat duplicate detection.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
