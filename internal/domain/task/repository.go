// internal/domain/task/repository.go
package task

import (
	"context"
	"time"
)

// Repository defines persistence operations for templates and work items.
type Repository interface {
	GetTemplate(ctx context.Context, id int64) (*RecurringTaskTemplate, error)

	// ListDueTemplates returns active templates of the organization whose
	// NextDueDate is on or before asOf.
	ListDueTemplates(ctx context.Context, organizationID int64, asOf time.Time) ([]*RecurringTaskTemplate, error)

	// UpdateTemplateSchedule persists NextDueDate and GenerationStatus after
	// a generation step.
	UpdateTemplateSchedule(ctx context.Context, tpl *RecurringTaskTemplate) error

	// ApplyCompletionOutcome folds one occurrence outcome into the template's
	// counters and streaks in a single atomic update, so concurrent
	// registrations cannot lose each other's increments. It returns the
	// template with the updated counters.
	ApplyCompletionOutcome(ctx context.Context, templateID int64, completed bool) (*RecurringTaskTemplate, error)

	// CreateWorkItem inserts a work item. When a row already exists for the
	// same (template id, due date) the implementation must return
	// ErrDuplicateWorkItem from the infra package; the caller treats that as
	// a benign no-op.
	CreateWorkItem(ctx context.Context, item *WorkItem) error

	// CountWorkItemsForTemplate reports how many work items the template has
	// produced so far, for TotalOccurrences cap checks.
	CountWorkItemsForTemplate(ctx context.Context, templateID int64) (int, error)

	// ListTemplatesByKeyResult returns every template attached to the key
	// result, used to reach work items for cycle snapshots.
	ListTemplatesByKeyResult(ctx context.Context, keyResultID int64) ([]*RecurringTaskTemplate, error)

	ListWorkItemsByTemplate(ctx context.Context, templateID int64) ([]*WorkItem, error)
}
