// internal/domain/task/template.go
package task

import (
	"database/sql"
	"time"

	"cadence_engine/internal/domain/cadence"
)

// GenerationStatus controls whether a template still spawns work items.
type GenerationStatus string

const (
	GenerationActive GenerationStatus = "ACTIVE"
	GenerationPaused GenerationStatus = "PAUSED"
	// GenerationCompleted is set when the next candidate due date would pass
	// EndDate, or when TotalOccurrences has been reached.
	GenerationCompleted GenerationStatus = "COMPLETED"
)

// RecurringTaskTemplate is a task definition that spawns WorkItems on a
// cadence. Corresponds to the 'recurring_task_templates' table.
type RecurringTaskTemplate struct {
	ID             int64
	OrganizationID int64
	Title          string
	Description    string

	Frequency   cadence.Spec
	NextDueDate time.Time    // date-only; the due date of the next work item
	EndDate     sql.NullTime // optional; generation stops past this date

	GenerationStatus GenerationStatus

	// Running counters maintained by completion accounting.
	CompletedCount int
	MissedCount    int
	CurrentStreak  int
	LongestStreak  int

	// TotalOccurrences is an optional cap on how many work items the
	// template ever produces; 0 means uncapped. When set and the owning key
	// result has a numeric target, completion ratio drives the key result's
	// current value.
	TotalOccurrences int

	// Ownership references. TeamID/AssigneeID may be unset, in which case
	// they are inherited from the owning key result (see ResolveOwnership).
	KeyResultID sql.NullInt64
	TeamID      sql.NullInt64
	AssigneeID  sql.NullInt64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActivityOutcome is the recorded result of one occurrence of a template.
type ActivityOutcome string

const (
	OutcomeCompleted ActivityOutcome = "COMPLETED"
	OutcomeMissed    ActivityOutcome = "MISSED"
)

// ActivityEntry is an immutable audit record appended when an occurrence is
// completed or missed. Entries are never updated or deleted.
type ActivityEntry struct {
	TemplateID int64
	Date       time.Time
	Outcome    ActivityOutcome
	WorkItemID sql.NullInt64
}
