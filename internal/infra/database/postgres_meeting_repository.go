// internal/infra/database/postgres_meeting_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cadence_engine/internal/domain/meeting"
)

// Custom errors specific to meeting occurrence persistence.
var ErrDuplicateOccurrence = fmt.Errorf("duplicate meeting occurrence (team_id, scheduled_on)")

type PostgresMeetingRepository struct {
	db *sql.DB
}

func NewPostgresMeetingRepository(db *sql.DB) *PostgresMeetingRepository {
	return &PostgresMeetingRepository{db: db}
}

// Create inserts an occurrence with conflict-ignore semantics on the
// (team_id, scheduled_on) natural key. A concurrent writer that loses the
// race observes zero returned rows and gets ErrDuplicateOccurrence; the
// existing row is never touched.
func (r *PostgresMeetingRepository) Create(ctx context.Context, occ *meeting.Occurrence) error {
	query := `INSERT INTO meeting_occurrences (team_id, scheduled_on, starts_at, duration_minutes, status)
               VALUES ($1, $2, $3, $4, $5)
               ON CONFLICT (team_id, scheduled_on) DO NOTHING
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		occ.TeamID, occ.ScheduledOn, occ.StartsAt, occ.DurationMinutes, occ.Status,
	).Scan(&occ.ID, &occ.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrDuplicateOccurrence
		}
		return fmt.Errorf("error creating meeting occurrence: %w", err)
	}
	return nil
}

func (r *PostgresMeetingRepository) ListScheduledDates(ctx context.Context, teamID int64, from, to time.Time) ([]time.Time, error) {
	query := `SELECT scheduled_on FROM meeting_occurrences
               WHERE team_id = $1 AND scheduled_on BETWEEN $2 AND $3
               ORDER BY scheduled_on`
	rows, err := r.db.QueryContext(ctx, query, teamID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying occurrence dates: %w", err)
	}
	defer rows.Close()

	dates := make([]time.Time, 0)
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("error scanning occurrence date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating occurrence dates: %w", err)
	}
	return dates, nil
}

func (r *PostgresMeetingRepository) ListByTeam(ctx context.Context, teamID int64, from, to time.Time) ([]*meeting.Occurrence, error) {
	query := `SELECT id, team_id, scheduled_on, starts_at, duration_minutes, status, created_at
               FROM meeting_occurrences
               WHERE team_id = $1 AND scheduled_on BETWEEN $2 AND $3
               ORDER BY scheduled_on`
	rows, err := r.db.QueryContext(ctx, query, teamID, from, to)
	if err != nil {
		return nil, fmt.Errorf("error querying occurrences by team: %w", err)
	}
	defer rows.Close()

	occurrences := make([]*meeting.Occurrence, 0)
	for rows.Next() {
		occ := meeting.Occurrence{}
		if err := rows.Scan(&occ.ID, &occ.TeamID, &occ.ScheduledOn, &occ.StartsAt, &occ.DurationMinutes, &occ.Status, &occ.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning occurrence row: %w", err)
		}
		occurrences = append(occurrences, &occ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating occurrence rows: %w", err)
	}
	return occurrences, nil
}
