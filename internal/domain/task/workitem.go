// internal/domain/task/workitem.go
package task

import (
	"database/sql"
	"time"
)

// WorkItemStatus is owned by external workflow code past creation; the
// generator only ever writes WorkItemOpen.
type WorkItemStatus string

const (
	WorkItemOpen      WorkItemStatus = "OPEN"
	WorkItemDone      WorkItemStatus = "DONE"
	WorkItemCancelled WorkItemStatus = "CANCELLED"
)

// WorkItem is one generated unit of work. Corresponds to the 'work_items'
// table. For template-generated items at most one row exists per
// (template id, due date).
type WorkItem struct {
	ID          int64
	Title       string
	Description string
	DueDate     time.Time // date-only granularity

	// TemplateID links back to the originating template; it is null for
	// manually created items, which this engine never produces.
	TemplateID sql.NullInt64
	TeamID     sql.NullInt64
	AssigneeID sql.NullInt64

	Status    WorkItemStatus
	CreatedAt time.Time
}
