// internal/domain/review/cycle.go
package review

import (
	"fmt"
	"time"
)

// ErrInvalidTransition indicates an illegal state-machine move. It is a
// caller bug, never a retryable condition.
var ErrInvalidTransition = fmt.Errorf("invalid review cycle transition")

// State is a review cycle's lifecycle state. Transitions are linear and
// monotonic: Planning → In Progress → Review → Completed, no skips, no
// backward moves, Completed terminal.
type State string

const (
	StatePlanning   State = "PLANNING"
	StateInProgress State = "IN_PROGRESS"
	StateReview     State = "REVIEW"
	StateCompleted  State = "COMPLETED"
)

// next maps each state to its only legal successor.
var next = map[State]State{
	StatePlanning:   StateInProgress,
	StateInProgress: StateReview,
	StateReview:     StateCompleted,
}

// Cycle is the periodic checkpoint container for one objective.
// Corresponds to the 'review_cycles' table.
type Cycle struct {
	ID          int64
	ObjectiveID int64
	StartDate   time.Time // date-only window derived from the objective's cadence
	EndDate     time.Time
	Status      State
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidateTransition checks that moving from the cycle's current state to
// target is the single legal forward step.
func (c *Cycle) ValidateTransition(target State) error {
	successor, ok := next[c.Status]
	if !ok {
		return fmt.Errorf("%w: cycle %d is %s, which is terminal", ErrInvalidTransition, c.ID, c.Status)
	}
	if target != successor {
		return fmt.Errorf("%w: cycle %d cannot move %s -> %s (next legal state is %s)",
			ErrInvalidTransition, c.ID, c.Status, target, successor)
	}
	return nil
}
