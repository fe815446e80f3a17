// internal/domain/okr/okr.go
package okr

import (
	"database/sql"
	"time"

	"cadence_engine/internal/domain/cadence"
)

// Team groups people and owns an optional meeting cadence. Teams without a
// cadence are skipped by meeting generation.
type Team struct {
	ID             int64
	OrganizationID int64
	Name           string
	MeetingCadence *cadence.Spec
	CreatedAt      time.Time
}

// Objective is owned by external OKR code; this engine reads it for review
// cycle windows and snapshots.
type Objective struct {
	ID             int64
	OrganizationID int64
	TeamID         sql.NullInt64
	Title          string
	Status         string
	// ReviewCadence drives the [start, end] window of newly created review
	// cycles.
	ReviewCadence cadence.Spec
	CreatedAt     time.Time
}

// KeyResult is a measurable outcome under an objective. CurrentValue is
// recomputed by the task generator when a capped recurring template reports
// completions.
type KeyResult struct {
	ID          int64
	ObjectiveID int64
	Title       string
	Status      string
	// TeamID/AssigneeID participate in ownership inheritance for work items
	// generated from templates attached to this key result.
	TeamID       sql.NullInt64
	AssigneeID   sql.NullInt64
	CurrentValue float64
	TargetValue  float64
	CreatedAt    time.Time
}
