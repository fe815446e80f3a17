// internal/infra/database/postgres_okr_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"cadence_engine/internal/domain/okr"
)

// Custom errors specific to the OKR read-side repository.
var ErrTeamNotFound = fmt.Errorf("team not found")
var ErrObjectiveNotFound = fmt.Errorf("objective not found")
var ErrKeyResultNotFound = fmt.Errorf("key result not found")

type PostgresOKRRepository struct {
	db *sql.DB
}

func NewPostgresOKRRepository(db *sql.DB) *PostgresOKRRepository {
	return &PostgresOKRRepository{db: db}
}

const teamColumns = `id, organization_id, name,
       cadence_kind, cadence_weekday, cadence_nth, cadence_day_of_month, cadence_period_days,
       cadence_hour, cadence_minute, cadence_timezone, cadence_duration_minutes, created_at`

func scanTeam(row interface{ Scan(...any) error }) (*okr.Team, error) {
	t := okr.Team{}
	cols := cadenceColumns{}
	targets := []any{&t.ID, &t.OrganizationID, &t.Name}
	targets = append(targets, cols.scanTargets()...)
	targets = append(targets, &t.CreatedAt)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	t.MeetingCadence = cols.spec()
	return &t, nil
}

func (r *PostgresOKRRepository) GetTeam(ctx context.Context, id int64) (*okr.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	t, err := scanTeam(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("error getting team by ID: %w", err)
	}
	return t, nil
}

func (r *PostgresOKRRepository) ListTeamsWithMeetingCadence(ctx context.Context, organizationID int64) ([]*okr.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams
               WHERE organization_id = $1 AND cadence_kind IS NOT NULL
               ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("error querying teams with meeting cadence: %w", err)
	}
	defer rows.Close()

	teams := make([]*okr.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning team row: %w", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

func (r *PostgresOKRRepository) GetObjective(ctx context.Context, id int64) (*okr.Objective, error) {
	query := `SELECT id, organization_id, team_id, title, status,
                      cadence_kind, cadence_weekday, cadence_nth, cadence_day_of_month, cadence_period_days,
                      cadence_hour, cadence_minute, cadence_timezone, cadence_duration_minutes, created_at
               FROM objectives WHERE id = $1`
	o := okr.Objective{}
	cols := cadenceColumns{}
	targets := []any{&o.ID, &o.OrganizationID, &o.TeamID, &o.Title, &o.Status}
	targets = append(targets, cols.scanTargets()...)
	targets = append(targets, &o.CreatedAt)
	err := r.db.QueryRowContext(ctx, query, id).Scan(targets...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrObjectiveNotFound
		}
		return nil, fmt.Errorf("error getting objective by ID: %w", err)
	}
	if spec := cols.spec(); spec != nil {
		o.ReviewCadence = *spec
	}
	return &o, nil
}

func (r *PostgresOKRRepository) GetKeyResult(ctx context.Context, id int64) (*okr.KeyResult, error) {
	query := `SELECT id, objective_id, title, status, team_id, assignee_id, current_value, target_value, created_at
               FROM key_results WHERE id = $1`
	kr := okr.KeyResult{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&kr.ID, &kr.ObjectiveID, &kr.Title, &kr.Status, &kr.TeamID, &kr.AssigneeID,
		&kr.CurrentValue, &kr.TargetValue, &kr.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrKeyResultNotFound
		}
		return nil, fmt.Errorf("error getting key result by ID: %w", err)
	}
	return &kr, nil
}

func (r *PostgresOKRRepository) ListKeyResultsByObjective(ctx context.Context, objectiveID int64) ([]*okr.KeyResult, error) {
	query := `SELECT id, objective_id, title, status, team_id, assignee_id, current_value, target_value, created_at
               FROM key_results WHERE objective_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, objectiveID)
	if err != nil {
		return nil, fmt.Errorf("error querying key results by objective: %w", err)
	}
	defer rows.Close()

	results := make([]*okr.KeyResult, 0)
	for rows.Next() {
		kr := okr.KeyResult{}
		if err := rows.Scan(&kr.ID, &kr.ObjectiveID, &kr.Title, &kr.Status, &kr.TeamID, &kr.AssigneeID,
			&kr.CurrentValue, &kr.TargetValue, &kr.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning key result row: %w", err)
		}
		results = append(results, &kr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating key result rows: %w", err)
	}
	return results, nil
}

func (r *PostgresOKRRepository) UpdateKeyResultCurrentValue(ctx context.Context, keyResultID int64, value float64) error {
	query := `UPDATE key_results SET current_value = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, value, keyResultID)
	if err != nil {
		return fmt.Errorf("error updating key result current value: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking key result update: %w", err)
	}
	if affected == 0 {
		return ErrKeyResultNotFound
	}
	return nil
}
