// internal/app/review_service.go
package app

import (
	"context"
	"fmt"
	"time"

	"cadence_engine/internal/domain/cadence"
	"cadence_engine/internal/domain/okr"
	"cadence_engine/internal/domain/review"
	"cadence_engine/internal/domain/task"

	"github.com/sirupsen/logrus"
)

// ReviewCycleService owns the review-cycle lifecycle and its checkpoint
// snapshots.
type ReviewCycleService interface {
	// StartReviewCycle creates a cycle in Planning for the objective, with
	// the [start, end] window derived from the objective's review cadence:
	// the next occurrence on or after asOf through the day before the
	// following occurrence.
	StartReviewCycle(ctx context.Context, objectiveID int64, asOf time.Time) (*review.Cycle, error)

	// AdvanceReviewCycle moves the cycle one step forward. Non-adjacent or
	// backward targets fail with review.ErrInvalidTransition. Entering
	// Review or Completed snapshots the objective, its key results and all
	// work items reachable through its key-result templates, all-or-nothing.
	AdvanceReviewCycle(ctx context.Context, cycleID int64, target review.State) error
}

type ReviewCycleServiceImpl struct {
	reviewRepo review.Repository
	okrRepo    okr.Repository
	taskRepo   task.Repository
	logger     *logrus.Logger
	now        func() time.Time
}

func NewReviewCycleServiceImpl(rr review.Repository, or okr.Repository, tr task.Repository, logger *logrus.Logger) *ReviewCycleServiceImpl {
	return &ReviewCycleServiceImpl{
		reviewRepo: rr,
		okrRepo:    or,
		taskRepo:   tr,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *ReviewCycleServiceImpl) StartReviewCycle(ctx context.Context, objectiveID int64, asOf time.Time) (*review.Cycle, error) {
	objective, err := s.okrRepo.GetObjective(ctx, objectiveID)
	if err != nil {
		return nil, fmt.Errorf("failed to load objective %d: %w", objectiveID, err)
	}

	boundaries, err := cadence.NextOccurrences(objective.ReviewCadence, asOf, 2)
	if err != nil {
		return nil, fmt.Errorf("objective %d review cadence is invalid: %w", objectiveID, err)
	}

	cycle := &review.Cycle{
		ObjectiveID: objectiveID,
		StartDate:   boundaries[0],
		EndDate:     boundaries[1].AddDate(0, 0, -1),
		Status:      review.StatePlanning,
	}
	if err := s.reviewRepo.CreateCycle(ctx, cycle); err != nil {
		return nil, fmt.Errorf("failed to create review cycle for objective %d: %w", objectiveID, err)
	}
	s.logger.Infof("Review cycle %d created for objective %d, window [%s, %s].",
		cycle.ID, objectiveID, cycle.StartDate.Format("2006-01-02"), cycle.EndDate.Format("2006-01-02"))
	return cycle, nil
}

func (s *ReviewCycleServiceImpl) AdvanceReviewCycle(ctx context.Context, cycleID int64, target review.State) error {
	cycle, err := s.reviewRepo.GetCycleByID(ctx, cycleID)
	if err != nil {
		return fmt.Errorf("failed to load review cycle %d: %w", cycleID, err)
	}
	if err := cycle.ValidateTransition(target); err != nil {
		return err
	}

	switch target {
	case review.StateInProgress:
		if err := s.reviewRepo.Activate(ctx, cycle); err != nil {
			return fmt.Errorf("failed to activate review cycle %d: %w", cycleID, err)
		}
		s.logger.Infof("Review cycle %d is now In Progress.", cycleID)
		return nil

	default: // Review or Completed: checkpoint transition
		snapshots, err := s.collectSnapshots(ctx, cycle)
		if err != nil {
			return fmt.Errorf("failed to collect snapshot state for cycle %d: %w", cycleID, err)
		}
		if err := s.reviewRepo.TransitionWithSnapshots(ctx, cycle, target, snapshots); err != nil {
			// The repository rolled everything back; the cycle is unchanged
			// and the caller may retry.
			return fmt.Errorf("failed to transition review cycle %d to %s: %w", cycleID, target, err)
		}
		s.logger.Infof("Review cycle %d transitioned to %s with %d snapshot(s).", cycleID, target, len(snapshots))
		return nil
	}
}

// collectSnapshots captures the objective, every key result under it, and
// every work item reachable through the key results' templates.
func (s *ReviewCycleServiceImpl) collectSnapshots(ctx context.Context, cycle *review.Cycle) ([]*review.Snapshot, error) {
	capturedAt := s.now()

	objective, err := s.okrRepo.GetObjective(ctx, cycle.ObjectiveID)
	if err != nil {
		return nil, fmt.Errorf("failed to load objective %d: %w", cycle.ObjectiveID, err)
	}
	snapshots := []*review.Snapshot{{
		CycleID:    cycle.ID,
		EntityType: review.EntityObjective,
		EntityID:   objective.ID,
		Title:      objective.Title,
		Status:     objective.Status,
		CapturedAt: capturedAt,
	}}

	keyResults, err := s.okrRepo.ListKeyResultsByObjective(ctx, objective.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list key results for objective %d: %w", objective.ID, err)
	}
	for _, kr := range keyResults {
		snapshots = append(snapshots, &review.Snapshot{
			CycleID:      cycle.ID,
			EntityType:   review.EntityKeyResult,
			EntityID:     kr.ID,
			Title:        kr.Title,
			Status:       kr.Status,
			CurrentValue: kr.CurrentValue,
			TargetValue:  kr.TargetValue,
			CapturedAt:   capturedAt,
		})

		templates, err := s.taskRepo.ListTemplatesByKeyResult(ctx, kr.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list templates for key result %d: %w", kr.ID, err)
		}
		for _, tpl := range templates {
			items, err := s.taskRepo.ListWorkItemsByTemplate(ctx, tpl.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to list work items for template %d: %w", tpl.ID, err)
			}
			for _, item := range items {
				snapshots = append(snapshots, &review.Snapshot{
					CycleID:    cycle.ID,
					EntityType: review.EntityWorkItem,
					EntityID:   item.ID,
					Title:      item.Title,
					Status:     string(item.Status),
					CapturedAt: capturedAt,
				})
			}
		}
	}
	return snapshots, nil
}
