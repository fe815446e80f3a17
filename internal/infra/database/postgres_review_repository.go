// internal/infra/database/postgres_review_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"cadence_engine/internal/domain/review"
)

// Custom errors specific to the review repository.
var ErrCycleNotFound = fmt.Errorf("review cycle not found")
var ErrCycleAlreadyInProgress = fmt.Errorf("another review cycle for this objective is already in progress")
var ErrSnapshotWrite = fmt.Errorf("snapshot write failed")

type PostgresReviewRepository struct {
	db *sql.DB
}

func NewPostgresReviewRepository(db *sql.DB) *PostgresReviewRepository {
	return &PostgresReviewRepository{db: db}
}

func (r *PostgresReviewRepository) CreateCycle(ctx context.Context, cycle *review.Cycle) error {
	query := `INSERT INTO review_cycles (objective_id, start_date, end_date, status)
               VALUES ($1, $2, $3, $4)
               RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, cycle.ObjectiveID, cycle.StartDate, cycle.EndDate, cycle.Status).
		Scan(&cycle.ID, &cycle.CreatedAt, &cycle.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating review cycle: %w", err)
	}
	return nil
}

func (r *PostgresReviewRepository) GetCycleByID(ctx context.Context, id int64) (*review.Cycle, error) {
	query := `SELECT id, objective_id, start_date, end_date, status, created_at, updated_at
               FROM review_cycles WHERE id = $1`
	cycle := review.Cycle{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&cycle.ID, &cycle.ObjectiveID, &cycle.StartDate, &cycle.EndDate,
		&cycle.Status, &cycle.CreatedAt, &cycle.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("error getting review cycle by ID: %w", err)
	}
	return &cycle, nil
}

func (r *PostgresReviewRepository) ListCyclesByObjective(ctx context.Context, objectiveID int64) ([]*review.Cycle, error) {
	query := `SELECT id, objective_id, start_date, end_date, status, created_at, updated_at
               FROM review_cycles WHERE objective_id = $1 ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, objectiveID)
	if err != nil {
		return nil, fmt.Errorf("error querying review cycles by objective: %w", err)
	}
	defer rows.Close()

	cycles := make([]*review.Cycle, 0)
	for rows.Next() {
		cycle := review.Cycle{}
		if err := rows.Scan(&cycle.ID, &cycle.ObjectiveID, &cycle.StartDate, &cycle.EndDate,
			&cycle.Status, &cycle.CreatedAt, &cycle.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning review cycle row: %w", err)
		}
		cycles = append(cycles, &cycle)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating review cycle rows: %w", err)
	}
	return cycles, nil
}

// Activate moves a cycle to In Progress. The objective row is locked for the
// duration of the transaction so two concurrent activations for the same
// objective serialize; the loser then sees the winner's In Progress row and
// gets ErrCycleAlreadyInProgress.
func (r *PostgresReviewRepository) Activate(ctx context.Context, cycle *review.Cycle) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for cycle activation: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	var objectiveID int64
	if err := txn.QueryRowContext(ctx,
		`SELECT id FROM objectives WHERE id = $1 FOR UPDATE`, cycle.ObjectiveID,
	).Scan(&objectiveID); err != nil {
		if err == sql.ErrNoRows {
			return ErrObjectiveNotFound
		}
		return fmt.Errorf("error locking objective for cycle activation: %w", err)
	}

	var inProgressCount int
	if err := txn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM review_cycles WHERE objective_id = $1 AND status = $2 AND id <> $3`,
		cycle.ObjectiveID, review.StateInProgress, cycle.ID,
	).Scan(&inProgressCount); err != nil {
		return fmt.Errorf("error checking in-progress cycles: %w", err)
	}
	if inProgressCount > 0 {
		return ErrCycleAlreadyInProgress
	}

	err = txn.QueryRowContext(ctx,
		`UPDATE review_cycles SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3 RETURNING updated_at`,
		review.StateInProgress, cycle.ID, cycle.Status,
	).Scan(&cycle.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			// The cycle moved under us; report it as the state conflict it is.
			return fmt.Errorf("%w: cycle %d changed state concurrently", review.ErrInvalidTransition, cycle.ID)
		}
		return fmt.Errorf("error activating review cycle: %w", err)
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("failed to commit cycle activation: %w", err)
	}
	cycle.Status = review.StateInProgress
	return nil
}

// TransitionWithSnapshots writes the status change and the complete snapshot
// set in one transaction. Any snapshot error rolls the whole transition back;
// a partial snapshot set is never observable.
func (r *PostgresReviewRepository) TransitionWithSnapshots(ctx context.Context, cycle *review.Cycle, target review.State, snapshots []*review.Snapshot) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for cycle transition: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	err = txn.QueryRowContext(ctx,
		`UPDATE review_cycles SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3 RETURNING updated_at`,
		target, cycle.ID, cycle.Status,
	).Scan(&cycle.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: cycle %d changed state concurrently", review.ErrInvalidTransition, cycle.ID)
		}
		return fmt.Errorf("error updating review cycle status: %w", err)
	}

	stmt, err := txn.PrepareContext(ctx,
		`INSERT INTO review_snapshots (cycle_id, entity_type, entity_id, title, status, current_value, target_value, captured_at)
          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return fmt.Errorf("%w: failed to prepare snapshot insert: %v", ErrSnapshotWrite, err)
	}
	defer stmt.Close()

	for _, snap := range snapshots {
		if _, err := stmt.ExecContext(ctx,
			cycle.ID, snap.EntityType, snap.EntityID, snap.Title, snap.Status,
			snap.CurrentValue, snap.TargetValue, snap.CapturedAt,
		); err != nil {
			return fmt.Errorf("%w: snapshot for %s %d: %v", ErrSnapshotWrite, snap.EntityType, snap.EntityID, err)
		}
	}

	if err := txn.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit cycle transition: %v", ErrSnapshotWrite, err)
	}
	cycle.Status = target
	return nil
}

func (r *PostgresReviewRepository) ListSnapshotsByCycle(ctx context.Context, cycleID int64) ([]*review.Snapshot, error) {
	query := `SELECT id, cycle_id, entity_type, entity_id, title, status, current_value, target_value, captured_at
               FROM review_snapshots WHERE cycle_id = $1 ORDER BY entity_type, entity_id`
	rows, err := r.db.QueryContext(ctx, query, cycleID)
	if err != nil {
		return nil, fmt.Errorf("error querying snapshots by cycle: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*review.Snapshot, 0)
	for rows.Next() {
		snap := review.Snapshot{}
		if err := rows.Scan(&snap.ID, &snap.CycleID, &snap.EntityType, &snap.EntityID,
			&snap.Title, &snap.Status, &snap.CurrentValue, &snap.TargetValue, &snap.CapturedAt); err != nil {
			return nil, fmt.Errorf("error scanning snapshot row: %w", err)
		}
		snapshots = append(snapshots, &snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}
	return snapshots, nil
}
