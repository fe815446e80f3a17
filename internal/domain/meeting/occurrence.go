// internal/domain/meeting/occurrence.go
package meeting

import "time"

// Status reflects where a meeting occurrence is in its lifecycle. The
// materializer only ever writes StatusScheduled; later transitions belong to
// the surrounding meeting workflow.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusStarted   Status = "STARTED"
	StatusEnded     Status = "ENDED"
)

// Occurrence is one concrete instance of a team's recurring meeting.
// Corresponds to the 'meeting_occurrences' table. At most one Occurrence
// exists per (team id, scheduled date); that uniqueness is the materializer's
// core guarantee.
type Occurrence struct {
	ID     int64
	TeamID int64
	// ScheduledOn is the date-only occurrence key. Duplicate detection runs
	// on this field, not on StartsAt, so a time-of-day change between
	// generation runs cannot produce a second row for the same date.
	ScheduledOn     time.Time
	StartsAt        time.Time // absolute instant (date + time of day + zone)
	DurationMinutes int
	Status          Status
	CreatedAt       time.Time
}
