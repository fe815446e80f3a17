// internal/app/meeting_service_test.go
package app

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"cadence_engine/internal/domain/cadence"
	"cadence_engine/internal/domain/okr"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weeklyMondayAt10() cadence.Spec {
	return cadence.Spec{Kind: cadence.KindWeekly, Weekday: time.Monday, Hour: 10, DurationMinutes: 60}
}

func TestEnsureOccurrencesMaterializesWindow(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingServiceImpl(newFakeOKRRepo(), repo, newTestLogger())

	created, err := svc.EnsureOccurrences(context.Background(), 1, weeklyMondayAt10(),
		date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	// Mondays in January 2024: 1st, 8th, 15th, 22nd, 29th.
	assert.Equal(t, 5, created)
	assert.Equal(t, 5, repo.count())

	occurrences, err := repo.ListByTeam(context.Background(), 1, date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	for _, occ := range occurrences {
		assert.Equal(t, 10, occ.StartsAt.Hour())
		assert.Equal(t, 60, occ.DurationMinutes)
	}
}

func TestEnsureOccurrencesIsIdempotent(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingServiceImpl(newFakeOKRRepo(), repo, newTestLogger())

	first, err := svc.EnsureOccurrences(context.Background(), 1, weeklyMondayAt10(),
		date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	require.Equal(t, 5, first)

	second, err := svc.EnsureOccurrences(context.Background(), 1, weeklyMondayAt10(),
		date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	assert.Zero(t, second, "second identical invocation must create no rows")
	assert.Equal(t, 5, repo.count())
}

func TestEnsureOccurrencesOverlappingWindowFillsOnlyGaps(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingServiceImpl(newFakeOKRRepo(), repo, newTestLogger())

	_, err := svc.EnsureOccurrences(context.Background(), 1, weeklyMondayAt10(),
		date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)

	created, err := svc.EnsureOccurrences(context.Background(), 1, weeklyMondayAt10(),
		date(2024, time.January, 15), date(2024, time.February, 14))
	require.NoError(t, err)
	// Only February's Mondays (5th and 12th) are new.
	assert.Equal(t, 2, created)
	assert.Equal(t, 7, repo.count())
}

func TestEnsureOccurrencesKeysOnDateNotTimestamp(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingServiceImpl(newFakeOKRRepo(), repo, newTestLogger())

	_, err := svc.EnsureOccurrences(context.Background(), 1, weeklyMondayAt10(),
		date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)

	// The meeting moves to 14:00; the already materialized dates must not be
	// regenerated.
	moved := weeklyMondayAt10()
	moved.Hour = 14
	created, err := svc.EnsureOccurrences(context.Background(), 1, moved,
		date(2024, time.January, 1), date(2024, time.January, 31))
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, 5, repo.count())
}

func TestEnsureOccurrencesConcurrentTriggersCreateNoDuplicates(t *testing.T) {
	repo := newFakeMeetingRepo()
	svc := NewMeetingServiceImpl(newFakeOKRRepo(), repo, newTestLogger())

	const racers = 8
	var wg sync.WaitGroup
	results := make([]int, racers)
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.EnsureOccurrences(context.Background(), 1, weeklyMondayAt10(),
				date(2024, time.January, 1), date(2024, time.January, 31))
		}(i)
	}
	wg.Wait()

	total := 0
	for i := 0; i < racers; i++ {
		require.NoError(t, errs[i], "losing a race must not surface as an error")
		total += results[i]
	}
	// Together the racers create exactly what the cadence requires.
	assert.Equal(t, 5, total)
	assert.Equal(t, 5, repo.count())
}

func TestEnsureOccurrencesRejectsInvalidSpec(t *testing.T) {
	svc := NewMeetingServiceImpl(newFakeOKRRepo(), newFakeMeetingRepo(), newTestLogger())

	_, err := svc.EnsureOccurrences(context.Background(), 1, cadence.Spec{Kind: cadence.KindMonthlyDayOfMonth},
		date(2024, time.January, 1), date(2024, time.January, 31))
	require.Error(t, err)
	assert.ErrorIs(t, err, cadence.ErrInvalidSpec)
}

func TestRunMeetingGeneration(t *testing.T) {
	okrRepo := newFakeOKRRepo()
	spec := weeklyMondayAt10()
	okrRepo.teams[1] = &okr.Team{ID: 1, OrganizationID: 1, Name: "Platform", MeetingCadence: &spec}
	repo := newFakeMeetingRepo()
	svc := NewMeetingServiceImpl(okrRepo, repo, newTestLogger())
	svc.now = func() time.Time { return date(2024, time.January, 1) }

	created, err := svc.RunMeetingGeneration(context.Background(), 1, 14)
	require.NoError(t, err)
	// Mondays in [Jan 1, Jan 15]: 1st, 8th, 15th.
	assert.Equal(t, 3, created)
}

func TestRunMeetingGenerationWithoutCadenceIsNoop(t *testing.T) {
	okrRepo := newFakeOKRRepo()
	okrRepo.teams[2] = &okr.Team{ID: 2, OrganizationID: 1, Name: "Ops"}
	svc := NewMeetingServiceImpl(okrRepo, newFakeMeetingRepo(), newTestLogger())

	created, err := svc.RunMeetingGeneration(context.Background(), 2, 30)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestRunMeetingGenerationUnknownTeam(t *testing.T) {
	svc := NewMeetingServiceImpl(newFakeOKRRepo(), newFakeMeetingRepo(), newTestLogger())

	_, err := svc.RunMeetingGeneration(context.Background(), 99, 30)
	assert.Error(t, err)
}
