// internal/domain/review/repository.go
package review

import (
	"context"
)

// Repository defines persistence operations for review cycles and their
// snapshots. The multi-row invariants (single In-Progress cycle per
// objective, all-or-nothing snapshot sets) are the implementation's to
// enforce transactionally.
type Repository interface {
	CreateCycle(ctx context.Context, cycle *Cycle) error
	GetCycleByID(ctx context.Context, id int64) (*Cycle, error)
	ListCyclesByObjective(ctx context.Context, objectiveID int64) ([]*Cycle, error)

	// Activate moves the cycle to In Progress. The check that no other cycle
	// of the same objective is In Progress and the status write must be one
	// serialized unit; when another cycle holds In Progress the
	// implementation returns ErrCycleAlreadyInProgress from the infra
	// package and writes nothing.
	Activate(ctx context.Context, cycle *Cycle) error

	// TransitionWithSnapshots writes the new status and the full snapshot
	// set in a single transaction. Any snapshot write failure rolls back the
	// whole transition; partial snapshot sets are never observable.
	TransitionWithSnapshots(ctx context.Context, cycle *Cycle, target State, snapshots []*Snapshot) error

	ListSnapshotsByCycle(ctx context.Context, cycleID int64) ([]*Snapshot, error)
}
