// internal/domain/review/snapshot.go
package review

import "time"

// EntityType discriminates which kind of entity a snapshot captured.
type EntityType string

const (
	EntityObjective EntityType = "OBJECTIVE"
	EntityKeyResult EntityType = "KEY_RESULT"
	EntityWorkItem  EntityType = "WORK_ITEM"
)

// Snapshot is an immutable point-in-time copy of an entity's measurable
// fields, tagged with the owning cycle. Corresponds to the 'review_snapshots'
// table, which is append-only: rows are created at cycle-boundary transitions
// and never mutated, retained indefinitely for historical reporting.
type Snapshot struct {
	ID           int64
	CycleID      int64
	EntityType   EntityType
	EntityID     int64
	Title        string
	Status       string
	CurrentValue float64
	TargetValue  float64
	CapturedAt   time.Time
}
