// internal/app/task_service.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"cadence_engine/internal/domain/activity"
	"cadence_engine/internal/domain/cadence"
	"cadence_engine/internal/domain/okr"
	"cadence_engine/internal/domain/org"
	"cadence_engine/internal/domain/task"
	idb "cadence_engine/internal/infra/database"

	"github.com/sirupsen/logrus"
)

// ValidationWarning flags a template whose recurring configuration is
// suspect. Hard failures skip generation for that template; soft warnings
// are informational and generation proceeds.
type ValidationWarning struct {
	TemplateID int64
	Message    string
	// Skipped reports whether the warning prevented generation.
	Skipped bool
}

// SweepResult is what a recurring-task sweep hands back to its trigger.
type SweepResult struct {
	Created  []*task.WorkItem
	Warnings []ValidationWarning
}

// RecurringTaskService generates work items from recurring task templates
// and maintains their completion accounting.
type RecurringTaskService interface {
	// RunRecurringTaskSweep creates one work item for every active template
	// of the organization whose next due date is on or before asOf, exactly
	// once per (template, due date), and advances each template's schedule.
	RunRecurringTaskSweep(ctx context.Context, organizationID int64, asOf time.Time) (*SweepResult, error)

	// RecordCompletion records the outcome of one occurrence: counters,
	// streaks, an immutable audit entry, and the proportional key-result
	// recompute for capped templates.
	RecordCompletion(ctx context.Context, templateID, workItemID int64, completed bool) error
}

type RecurringTaskServiceImpl struct {
	taskRepo    task.Repository
	okrRepo     okr.Repository
	orgRepo     org.Repository
	activityLog activity.Logger
	logger      *logrus.Logger
	now         func() time.Time
}

func NewRecurringTaskServiceImpl(
	tr task.Repository,
	or okr.Repository,
	orgr org.Repository,
	al activity.Logger,
	logger *logrus.Logger,
) *RecurringTaskServiceImpl {
	return &RecurringTaskServiceImpl{
		taskRepo:    tr,
		okrRepo:     or,
		orgRepo:     orgr,
		activityLog: al,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *RecurringTaskServiceImpl) RunRecurringTaskSweep(ctx context.Context, organizationID int64, asOf time.Time) (*SweepResult, error) {
	organization, err := s.orgRepo.GetByID(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load organization %d for task sweep: %w", organizationID, err)
	}

	asOf = cadence.Date(asOf)
	templates, err := s.taskRepo.ListDueTemplates(ctx, organizationID, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list due templates for organization %d: %w", organizationID, err)
	}
	s.logger.Infof("Task sweep for organization %d as of %s: %d due template(s).",
		organizationID, asOf.Format("2006-01-02"), len(templates))

	result := &SweepResult{Created: make([]*task.WorkItem, 0), Warnings: make([]ValidationWarning, 0)}
	for _, tpl := range templates {
		// A template with a broken configuration is flagged and skipped; it
		// must not abort the sweep for the other templates.
		if msg := hardValidationFailure(tpl); msg != "" {
			s.logger.Warnf("Template %d skipped: %s", tpl.ID, msg)
			result.Warnings = append(result.Warnings, ValidationWarning{TemplateID: tpl.ID, Message: msg, Skipped: true})
			continue
		}

		item, warnings, err := s.generateForTemplate(ctx, tpl, organization.Settings, asOf)
		if err != nil {
			s.logger.Errorf("Template %d generation failed: %v", tpl.ID, err)
			result.Warnings = append(result.Warnings, ValidationWarning{TemplateID: tpl.ID, Message: err.Error(), Skipped: true})
			continue
		}
		if item != nil {
			result.Created = append(result.Created, item)
		}
		result.Warnings = append(result.Warnings, warnings...)
	}

	s.logger.Infof("Task sweep for organization %d created %d work item(s), %d warning(s).",
		organizationID, len(result.Created), len(result.Warnings))
	return result, nil
}

// generateForTemplate runs one generation step: create the work item for the
// template's current due date unless it already exists, then advance the
// schedule by exactly one occurrence.
func (s *RecurringTaskServiceImpl) generateForTemplate(ctx context.Context, tpl *task.RecurringTaskTemplate, settings org.Settings, asOf time.Time) (*task.WorkItem, []ValidationWarning, error) {
	var keyResult *okr.KeyResult
	if tpl.KeyResultID.Valid {
		kr, err := s.okrRepo.GetKeyResult(ctx, tpl.KeyResultID.Int64)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load key result %d: %w", tpl.KeyResultID.Int64, err)
		}
		keyResult = kr
	}
	teamID, assigneeID := ResolveOwnership(tpl, keyResult)

	item := &task.WorkItem{
		Title:       tpl.Title,
		Description: tpl.Description,
		DueDate:     cadence.Date(tpl.NextDueDate),
		TemplateID:  sql.NullInt64{Int64: tpl.ID, Valid: true},
		TeamID:      teamID,
		AssigneeID:  assigneeID,
		Status:      task.WorkItemOpen,
	}
	created := item
	if err := s.taskRepo.CreateWorkItem(ctx, item); err != nil {
		if err != idb.ErrDuplicateWorkItem {
			return nil, nil, fmt.Errorf("failed to create work item: %w", err)
		}
		// A re-triggered or concurrent sweep already created this due date.
		s.logger.Infof("Work item for template %d due %s already exists. Skipping creation.",
			tpl.ID, item.DueDate.Format("2006-01-02"))
		created = nil
	}

	if tpl.TotalOccurrences > 0 {
		count, err := s.taskRepo.CountWorkItemsForTemplate(ctx, tpl.ID)
		if err != nil {
			return created, nil, fmt.Errorf("failed to count work items: %w", err)
		}
		if count >= tpl.TotalOccurrences {
			tpl.GenerationStatus = task.GenerationCompleted
			if err := s.taskRepo.UpdateTemplateSchedule(ctx, tpl); err != nil {
				return created, nil, fmt.Errorf("failed to complete capped template: %w", err)
			}
			s.logger.Infof("Template %d reached its occurrence cap (%d). Generation completed.", tpl.ID, tpl.TotalOccurrences)
			return created, nil, nil
		}
	}

	next, err := cadence.NextAfter(tpl.Frequency, tpl.NextDueDate)
	if err != nil {
		return created, nil, fmt.Errorf("failed to compute next due date: %w", err)
	}
	var warnings []ValidationWarning
	if tpl.EndDate.Valid && next.After(cadence.Date(tpl.EndDate.Time)) {
		tpl.GenerationStatus = task.GenerationCompleted
		s.logger.Infof("Template %d passed its end date. Generation completed.", tpl.ID)
	} else {
		tpl.NextDueDate = next
		if msg := lookaheadWarning(next, settings.LookaheadDays, asOf); msg != "" {
			// Soft validation only: the due date is suspiciously far out,
			// but generation proceeds.
			s.logger.Warnf("Template %d: %s", tpl.ID, msg)
			warnings = append(warnings, ValidationWarning{TemplateID: tpl.ID, Message: msg})
		}
	}
	if err := s.taskRepo.UpdateTemplateSchedule(ctx, tpl); err != nil {
		return created, warnings, fmt.Errorf("failed to advance template schedule: %w", err)
	}
	return created, warnings, nil
}

func (s *RecurringTaskServiceImpl) RecordCompletion(ctx context.Context, templateID, workItemID int64, completed bool) error {
	// The repository folds the outcome into the counters atomically; reading
	// the template first and writing absolute values back would let two
	// concurrent registrations drop an increment.
	tpl, err := s.taskRepo.ApplyCompletionOutcome(ctx, templateID, completed)
	if err != nil {
		return fmt.Errorf("failed to record completion outcome for template %d: %w", templateID, err)
	}

	outcome := task.OutcomeMissed
	if completed {
		outcome = task.OutcomeCompleted
	}

	entry := &task.ActivityEntry{
		TemplateID: templateID,
		Date:       cadence.Date(s.now()),
		Outcome:    outcome,
		WorkItemID: sql.NullInt64{Int64: workItemID, Valid: workItemID != 0},
	}
	if err := s.activityLog.Append(ctx, entry); err != nil {
		// The audit sink is best-effort; a log failure must not block
		// accounting.
		s.logger.Warnf("Failed to append activity entry for template %d: %v", templateID, err)
	}

	if tpl.TotalOccurrences > 0 && tpl.KeyResultID.Valid {
		if err := s.recomputeKeyResultProgress(ctx, tpl); err != nil {
			s.logger.Errorf("Failed to recompute key result progress for template %d: %v", templateID, err)
		}
	}
	return nil
}

// recomputeKeyResultProgress sets the key result's current value to the
// completion ratio of the capped template, rounded to the nearest integer.
func (s *RecurringTaskServiceImpl) recomputeKeyResultProgress(ctx context.Context, tpl *task.RecurringTaskTemplate) error {
	kr, err := s.okrRepo.GetKeyResult(ctx, tpl.KeyResultID.Int64)
	if err != nil {
		return fmt.Errorf("failed to load key result %d: %w", tpl.KeyResultID.Int64, err)
	}
	if kr.TargetValue == 0 {
		return nil
	}
	value := math.Round(float64(tpl.CompletedCount) / float64(tpl.TotalOccurrences) * kr.TargetValue)
	if err := s.okrRepo.UpdateKeyResultCurrentValue(ctx, kr.ID, value); err != nil {
		return fmt.Errorf("failed to update key result %d current value: %w", kr.ID, err)
	}
	s.logger.Infof("Key result %d current value recomputed to %.0f (%d/%d of target %.0f).",
		kr.ID, value, tpl.CompletedCount, tpl.TotalOccurrences, kr.TargetValue)
	return nil
}

// hardValidationFailure reports why a template must be skipped, or "" when it
// is generatable. Reused by editing surfaces through ValidateTemplate.
func hardValidationFailure(tpl *task.RecurringTaskTemplate) string {
	if tpl.NextDueDate.IsZero() {
		return "recurring template has no next due date"
	}
	if err := tpl.Frequency.Validate(); err != nil {
		return fmt.Sprintf("recurring template frequency is invalid: %v", err)
	}
	if tpl.EndDate.Valid && cadence.Date(tpl.EndDate.Time).Before(cadence.Date(tpl.NextDueDate)) {
		return "end date precedes next due date"
	}
	return ""
}

// lookaheadWarning reports a soft warning when dueDate lies beyond twice the
// organization's lookahead horizon from asOf, or "" when it is in range.
func lookaheadWarning(dueDate time.Time, lookaheadDays int, asOf time.Time) string {
	if lookaheadDays <= 0 {
		return ""
	}
	horizon := cadence.Date(asOf).AddDate(0, 0, 2*lookaheadDays)
	if dueDate.After(horizon) {
		return fmt.Sprintf("next due date %s exceeds twice the organization lookahead window (%d days)",
			dueDate.Format("2006-01-02"), lookaheadDays)
	}
	return ""
}

// ValidateTemplate checks a recurring configuration the way the sweep does,
// for reuse by editing surfaces before persistence. The returned warnings
// distinguish hard failures (generation would skip the template) from the
// soft lookahead advisory.
func ValidateTemplate(tpl *task.RecurringTaskTemplate, settings org.Settings, asOf time.Time) []ValidationWarning {
	var warnings []ValidationWarning
	if msg := hardValidationFailure(tpl); msg != "" {
		warnings = append(warnings, ValidationWarning{TemplateID: tpl.ID, Message: msg, Skipped: true})
		return warnings
	}
	if msg := lookaheadWarning(cadence.Date(tpl.NextDueDate), settings.LookaheadDays, asOf); msg != "" {
		warnings = append(warnings, ValidationWarning{TemplateID: tpl.ID, Message: msg})
	}
	return warnings
}
