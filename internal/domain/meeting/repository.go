// internal/domain/meeting/repository.go
package meeting

import (
	"context"
	"time"
)

// Repository defines persistence operations for meeting occurrences.
type Repository interface {
	// Create inserts an occurrence. When a row already exists for the same
	// (team id, scheduled date) the implementation must return
	// ErrDuplicateOccurrence from the infra package and leave the existing
	// row untouched; the losing writer of a race sees that sentinel, never a
	// second row.
	Create(ctx context.Context, occ *Occurrence) error

	// ListScheduledDates returns the date-only keys of every occurrence for
	// the team whose date falls in the inclusive window [from, to].
	ListScheduledDates(ctx context.Context, teamID int64, from, to time.Time) ([]time.Time, error)

	ListByTeam(ctx context.Context, teamID int64, from, to time.Time) ([]*Occurrence, error)
}
