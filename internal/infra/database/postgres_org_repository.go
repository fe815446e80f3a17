// internal/infra/database/postgres_org_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"cadence_engine/internal/domain/org"
)

var ErrOrganizationNotFound = fmt.Errorf("organization not found")

type PostgresOrgRepository struct {
	db *sql.DB
}

func NewPostgresOrgRepository(db *sql.DB) *PostgresOrgRepository {
	return &PostgresOrgRepository{db: db}
}

func (r *PostgresOrgRepository) GetByID(ctx context.Context, id int64) (*org.Organization, error) {
	query := `SELECT id, name, lookahead_days, auto_generate_meetings, auto_generate_tasks, created_at
               FROM organizations WHERE id = $1`
	o := org.Organization{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.Name, &o.Settings.LookaheadDays,
		&o.Settings.AutoGenerateMeetings, &o.Settings.AutoGenerateTasks, &o.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("error getting organization by ID: %w", err)
	}
	return &o, nil
}

func (r *PostgresOrgRepository) ListActive(ctx context.Context) ([]*org.Organization, error) {
	query := `SELECT id, name, lookahead_days, auto_generate_meetings, auto_generate_tasks, created_at
               FROM organizations WHERE is_active ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying active organizations: %w", err)
	}
	defer rows.Close()

	orgs := make([]*org.Organization, 0)
	for rows.Next() {
		o := org.Organization{}
		if err := rows.Scan(&o.ID, &o.Name, &o.Settings.LookaheadDays,
			&o.Settings.AutoGenerateMeetings, &o.Settings.AutoGenerateTasks, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning organization row: %w", err)
		}
		orgs = append(orgs, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating organization rows: %w", err)
	}
	return orgs, nil
}
