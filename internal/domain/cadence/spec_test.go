// internal/domain/cadence/spec_test.go
package cadence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr bool
	}{
		{"weekly ok", Spec{Kind: KindWeekly, Weekday: time.Monday}, false},
		{"weekly sunday ok", Spec{Kind: KindWeekly, Weekday: time.Sunday}, false},
		{"monthly day ok", Spec{Kind: KindMonthlyDayOfMonth, DayOfMonth: 31}, false},
		{"monthly day unset", Spec{Kind: KindMonthlyDayOfMonth}, true},
		{"monthly day out of range", Spec{Kind: KindMonthlyDayOfMonth, DayOfMonth: 32}, true},
		{"nth weekday ok", Spec{Kind: KindMonthlyNthWeekday, Nth: 2, Weekday: time.Tuesday}, false},
		{"nth weekday last ok", Spec{Kind: KindMonthlyNthWeekday, Nth: NthLast, Weekday: time.Friday}, false},
		{"nth unset", Spec{Kind: KindMonthlyNthWeekday, Weekday: time.Tuesday}, true},
		{"nth too large", Spec{Kind: KindMonthlyNthWeekday, Nth: 6, Weekday: time.Tuesday}, true},
		{"periodic ok", Spec{Kind: KindPeriodicNthWeekday, Nth: 2, Weekday: time.Thursday, PeriodDays: 42}, false},
		{"periodic without period", Spec{Kind: KindPeriodicNthWeekday, Nth: 2, Weekday: time.Thursday}, true},
		{"weekly with stray day of month", Spec{Kind: KindWeekly, Weekday: time.Monday, DayOfMonth: 15}, true},
		{"weekly with stray period", Spec{Kind: KindWeekly, Weekday: time.Monday, PeriodDays: 42}, true},
		{"monthly day with stray nth", Spec{Kind: KindMonthlyDayOfMonth, DayOfMonth: 15, Nth: 2}, true},
		{"nth weekday with stray day of month", Spec{Kind: KindMonthlyNthWeekday, Nth: 2, Weekday: time.Tuesday, DayOfMonth: 9}, true},
		{"nth weekday with stray period", Spec{Kind: KindMonthlyNthWeekday, Nth: 2, Weekday: time.Tuesday, PeriodDays: 14}, true},
		{"periodic with stray day of month", Spec{Kind: KindPeriodicNthWeekday, Nth: 2, Weekday: time.Thursday, PeriodDays: 42, DayOfMonth: 9}, true},
		{"kind unset", Spec{}, true},
		{"kind unknown", Spec{Kind: "fortnightly"}, true},
		{"bad hour", Spec{Kind: KindWeekly, Weekday: time.Monday, Hour: 24}, true},
		{"bad minute", Spec{Kind: KindWeekly, Weekday: time.Monday, Minute: 60}, true},
		{"bad timezone", Spec{Kind: KindWeekly, Weekday: time.Monday, Timezone: "Mars/Olympus"}, true},
		{"negative duration", Spec{Kind: KindWeekly, Weekday: time.Monday, DurationMinutes: -30}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			if tc.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidSpec)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInstantForAppliesTimeOfDayAndZone(t *testing.T) {
	spec := Spec{Kind: KindWeekly, Weekday: time.Monday, Hour: 10, Minute: 30, Timezone: "Europe/Berlin"}

	instant, err := spec.InstantFor(date(2024, time.January, 8))
	require.NoError(t, err)

	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 8, 10, 30, 0, 0, berlin), instant)
}

func TestInstantForDefaultsToUTC(t *testing.T) {
	spec := Spec{Kind: KindWeekly, Weekday: time.Monday, Hour: 9}

	instant, err := spec.InstantFor(date(2024, time.January, 8))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC), instant)
}

func TestDateNormalizes(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	d := Date(time.Date(2024, time.March, 5, 23, 45, 12, 0, berlin))
	assert.Equal(t, date(2024, time.March, 5), d)
}
