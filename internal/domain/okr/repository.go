// internal/domain/okr/repository.go
package okr

import "context"

// Repository is the read-mostly boundary to the OKR records owned by
// external storage collaborators. UpdateKeyResultCurrentValue is the one
// write this engine performs, for completion-ratio recomputes.
type Repository interface {
	GetTeam(ctx context.Context, id int64) (*Team, error)
	// ListTeamsWithMeetingCadence returns every team of the organization
	// that has a meeting cadence configured.
	ListTeamsWithMeetingCadence(ctx context.Context, organizationID int64) ([]*Team, error)

	GetObjective(ctx context.Context, id int64) (*Objective, error)
	GetKeyResult(ctx context.Context, id int64) (*KeyResult, error)
	ListKeyResultsByObjective(ctx context.Context, objectiveID int64) ([]*KeyResult, error)

	UpdateKeyResultCurrentValue(ctx context.Context, keyResultID int64, value float64) error
}
