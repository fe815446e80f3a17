// internal/app/meeting_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"cadence_engine/internal/domain/cadence"
	"cadence_engine/internal/domain/meeting"
	"cadence_engine/internal/domain/okr"
	idb "cadence_engine/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// DefaultMeetingWindowDays is the lookahead used when a trigger does not ask
// for a specific window.
const DefaultMeetingWindowDays = 90

// MeetingService materializes meeting occurrences from team cadences.
type MeetingService interface {
	// RunMeetingGeneration is the inbound trigger: it materializes the
	// team's occurrences from today through today+windowDays and returns
	// how many were newly created. windowDays <= 0 selects the default.
	RunMeetingGeneration(ctx context.Context, teamID int64, windowDays int) (int, error)

	// EnsureOccurrences guarantees persisted occurrences exist for every
	// cadence date in [from, to]. Re-invoking with an overlapping window is
	// a no-op for previously materialized dates, including under concurrent
	// invocation.
	EnsureOccurrences(ctx context.Context, teamID int64, spec cadence.Spec, from, to time.Time) (int, error)
}

type MeetingServiceImpl struct {
	okrRepo     okr.Repository
	meetingRepo meeting.Repository
	logger      *logrus.Logger
	now         func() time.Time
}

func NewMeetingServiceImpl(or okr.Repository, mr meeting.Repository, logger *logrus.Logger) *MeetingServiceImpl {
	return &MeetingServiceImpl{
		okrRepo:     or,
		meetingRepo: mr,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *MeetingServiceImpl) RunMeetingGeneration(ctx context.Context, teamID int64, windowDays int) (int, error) {
	if windowDays <= 0 {
		windowDays = DefaultMeetingWindowDays
	}

	team, err := s.okrRepo.GetTeam(ctx, teamID)
	if err != nil {
		return 0, fmt.Errorf("failed to load team %d for meeting generation: %w", teamID, err)
	}
	if team.MeetingCadence == nil {
		s.logger.Infof("Team %d has no meeting cadence configured. Nothing to generate.", teamID)
		return 0, nil
	}

	from := cadence.Date(s.now())
	to := from.AddDate(0, 0, windowDays)
	return s.EnsureOccurrences(ctx, teamID, *team.MeetingCadence, from, to)
}

func (s *MeetingServiceImpl) EnsureOccurrences(ctx context.Context, teamID int64, spec cadence.Spec, from, to time.Time) (int, error) {
	candidates, err := cadence.OccurrencesWithin(spec, from, to)
	if err != nil {
		return 0, fmt.Errorf("cadence evaluation failed for team %d: %w", teamID, err)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	// The existence check keys on the date, not the timestamp, so occurrences
	// survive a time-of-day change between generation runs.
	existing, err := s.meetingRepo.ListScheduledDates(ctx, teamID, cadence.Date(from), cadence.Date(to))
	if err != nil {
		return 0, fmt.Errorf("failed to list existing occurrences for team %d: %w", teamID, err)
	}
	materialized := make(map[time.Time]struct{}, len(existing))
	for _, d := range existing {
		materialized[cadence.Date(d)] = struct{}{}
	}

	created := 0
	for _, date := range candidates {
		if _, ok := materialized[date]; ok {
			continue
		}
		startsAt, err := spec.InstantFor(date)
		if err != nil {
			return created, fmt.Errorf("cadence time resolution failed for team %d: %w", teamID, err)
		}
		occ := &meeting.Occurrence{
			TeamID:          teamID,
			ScheduledOn:     date,
			StartsAt:        startsAt,
			DurationMinutes: spec.DurationMinutes,
			Status:          meeting.StatusScheduled,
		}
		if err := s.meetingRepo.Create(ctx, occ); err != nil {
			if err == idb.ErrDuplicateOccurrence {
				// A concurrent trigger won the insert race. Benign; not an
				// error for our caller.
				s.logger.Infof("Occurrence for team %d on %s already materialized concurrently. Skipping.",
					teamID, date.Format("2006-01-02"))
				continue
			}
			return created, fmt.Errorf("failed to create occurrence for team %d on %s: %w",
				teamID, date.Format("2006-01-02"), err)
		}
		created++
	}

	s.logger.Infof("Meeting generation for team %d created %d occurrence(s) in [%s, %s].",
		teamID, created, from.Format("2006-01-02"), to.Format("2006-01-02"))
	return created, nil
}
