package scheduler

import (
	"context"
	"time"

	"cadence_engine/internal/app"
	"cadence_engine/internal/domain/okr"
	"cadence_engine/internal/domain/org"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// GenerationScheduler is the engine's periodic trigger. It has no scheduling
// state of its own: each wake-up re-reads the organizations and calls the
// generation services, which are idempotent, so a missed or doubled firing is
// harmless.
type GenerationScheduler struct {
	cronEngine           *cron.Cron
	meetingService       app.MeetingService
	taskService          app.RecurringTaskService
	orgRepo              org.Repository
	okrRepo              okr.Repository
	logger               *logrus.Logger
	cronSpecMeetingSweep string
	cronSpecTaskSweep    string
	meetingWindowDays    int
}

func NewGenerationScheduler(
	meetingService app.MeetingService,
	taskService app.RecurringTaskService,
	orgRepo org.Repository,
	okrRepo okr.Repository,
	logger *logrus.Logger,
	cronSpecMeetingSweep string, // e.g., "0 6 * * *" (06:00 daily)
	cronSpecTaskSweep string, // e.g., "0 5 * * *" (05:00 daily)
	meetingWindowDays int,
) *GenerationScheduler {
	return &GenerationScheduler{
		cronEngine:           cron.New(cron.WithLocation(time.Local)), // Use server's local time for cron
		meetingService:       meetingService,
		taskService:          taskService,
		orgRepo:              orgRepo,
		okrRepo:              okrRepo,
		logger:               logger,
		cronSpecMeetingSweep: cronSpecMeetingSweep,
		cronSpecTaskSweep:    cronSpecTaskSweep,
		meetingWindowDays:    meetingWindowDays,
	}
}

func (s *GenerationScheduler) Start() {
	s.logger.Info("Starting generation scheduler...")

	_, err := s.cronEngine.AddFunc(s.cronSpecMeetingSweep, func() {
		s.logger.Info("Cron job triggered for meeting occurrence sweep.")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.runMeetingSweep(ctx)
	})
	if err != nil {
		s.logger.Fatalf("FATAL: Could not add meeting sweep cron job: %v", err)
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecTaskSweep, func() {
		s.logger.Info("Cron job triggered for recurring task sweep.")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.runTaskSweep(ctx)
	})
	if err != nil {
		s.logger.Fatalf("FATAL: Could not add task sweep cron job: %v", err)
	}

	s.cronEngine.Start()
	s.logger.Info("Generation scheduler started with jobs.")
}

// runMeetingSweep materializes occurrences for every cadenced team of every
// organization that has automatic meeting generation enabled. Per-team
// failures are logged and do not stop the sweep.
func (s *GenerationScheduler) runMeetingSweep(ctx context.Context) {
	organizations, err := s.orgRepo.ListActive(ctx)
	if err != nil {
		s.logger.Errorf("Meeting sweep aborted: failed to list organizations: %v", err)
		return
	}
	for _, o := range organizations {
		if !o.Settings.AutoGenerateMeetings {
			s.logger.Debugf("Organization %d has automatic meeting generation disabled. Skipping.", o.ID)
			continue
		}
		teams, err := s.okrRepo.ListTeamsWithMeetingCadence(ctx, o.ID)
		if err != nil {
			s.logger.Errorf("Meeting sweep for organization %d failed to list teams: %v", o.ID, err)
			continue
		}
		for _, team := range teams {
			created, err := s.meetingService.RunMeetingGeneration(ctx, team.ID, s.meetingWindowDays)
			if err != nil {
				s.logger.Errorf("Meeting generation for team %d failed: %v", team.ID, err)
				continue
			}
			if created > 0 {
				s.logger.Infof("Meeting generation for team %d created %d occurrence(s).", team.ID, created)
			}
		}
	}
}

func (s *GenerationScheduler) runTaskSweep(ctx context.Context) {
	organizations, err := s.orgRepo.ListActive(ctx)
	if err != nil {
		s.logger.Errorf("Task sweep aborted: failed to list organizations: %v", err)
		return
	}
	for _, o := range organizations {
		if !o.Settings.AutoGenerateTasks {
			s.logger.Debugf("Organization %d has automatic task generation disabled. Skipping.", o.ID)
			continue
		}
		result, err := s.taskService.RunRecurringTaskSweep(ctx, o.ID, time.Now())
		if err != nil {
			s.logger.Errorf("Task sweep for organization %d failed: %v", o.ID, err)
			continue
		}
		for _, w := range result.Warnings {
			s.logger.Warnf("Task sweep warning for organization %d, template %d: %s", o.ID, w.TemplateID, w.Message)
		}
		s.logger.Infof("Task sweep for organization %d created %d work item(s).", o.ID, len(result.Created))
	}
}

func (s *GenerationScheduler) Stop() {
	s.logger.Info("Stopping generation scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()               // Wait for graceful shutdown
	s.logger.Info("Generation scheduler gracefully stopped.")
}
