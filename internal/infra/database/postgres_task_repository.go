// internal/infra/database/postgres_task_repository.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cadence_engine/internal/domain/task"
)

// Custom errors specific to the task repository.
var ErrTemplateNotFound = fmt.Errorf("recurring task template not found")
var ErrDuplicateWorkItem = fmt.Errorf("duplicate work item (template_id, due_date)")

type PostgresTaskRepository struct {
	db *sql.DB
}

func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{db: db}
}

const templateColumns = `id, organization_id, title, description,
       cadence_kind, cadence_weekday, cadence_nth, cadence_day_of_month, cadence_period_days,
       cadence_hour, cadence_minute, cadence_timezone, cadence_duration_minutes,
       next_due_date, end_date, generation_status,
       completed_count, missed_count, current_streak, longest_streak, total_occurrences,
       key_result_id, team_id, assignee_id, created_at, updated_at`

func scanTemplate(row interface{ Scan(...any) error }) (*task.RecurringTaskTemplate, error) {
	tpl := task.RecurringTaskTemplate{}
	cols := cadenceColumns{}
	targets := []any{&tpl.ID, &tpl.OrganizationID, &tpl.Title, &tpl.Description}
	targets = append(targets, cols.scanTargets()...)
	targets = append(targets,
		&tpl.NextDueDate, &tpl.EndDate, &tpl.GenerationStatus,
		&tpl.CompletedCount, &tpl.MissedCount, &tpl.CurrentStreak, &tpl.LongestStreak, &tpl.TotalOccurrences,
		&tpl.KeyResultID, &tpl.TeamID, &tpl.AssigneeID, &tpl.CreatedAt, &tpl.UpdatedAt,
	)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	if spec := cols.spec(); spec != nil {
		tpl.Frequency = *spec
	}
	return &tpl, nil
}

func (r *PostgresTaskRepository) GetTemplate(ctx context.Context, id int64) (*task.RecurringTaskTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_task_templates WHERE id = $1`
	tpl, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("error getting template by ID: %w", err)
	}
	return tpl, nil
}

func (r *PostgresTaskRepository) ListDueTemplates(ctx context.Context, organizationID int64, asOf time.Time) ([]*task.RecurringTaskTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_task_templates
               WHERE organization_id = $1 AND generation_status = $2 AND next_due_date <= $3
               ORDER BY next_due_date, id`
	rows, err := r.db.QueryContext(ctx, query, organizationID, task.GenerationActive, asOf)
	if err != nil {
		return nil, fmt.Errorf("error querying due templates: %w", err)
	}
	defer rows.Close()

	templates := make([]*task.RecurringTaskTemplate, 0)
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning template row: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template rows: %w", err)
	}
	return templates, nil
}

func (r *PostgresTaskRepository) UpdateTemplateSchedule(ctx context.Context, tpl *task.RecurringTaskTemplate) error {
	query := `UPDATE recurring_task_templates
               SET next_due_date = $1, generation_status = $2, updated_at = NOW()
               WHERE id = $3
               RETURNING updated_at`
	err := r.db.QueryRowContext(ctx, query, tpl.NextDueDate, tpl.GenerationStatus, tpl.ID).Scan(&tpl.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("error updating template schedule: %w", err)
	}
	return nil
}

// ApplyCompletionOutcome folds one outcome into the counters with relative
// arithmetic in a single statement, so concurrent registrations serialize on
// the row instead of overwriting each other's increments.
func (r *PostgresTaskRepository) ApplyCompletionOutcome(ctx context.Context, templateID int64, completed bool) (*task.RecurringTaskTemplate, error) {
	query := `UPDATE recurring_task_templates
               SET completed_count = completed_count + CASE WHEN $2 THEN 1 ELSE 0 END,
                   missed_count    = missed_count    + CASE WHEN $2 THEN 0 ELSE 1 END,
                   current_streak  = CASE WHEN $2 THEN current_streak + 1 ELSE 0 END,
                   longest_streak  = CASE WHEN $2 THEN GREATEST(longest_streak, current_streak + 1) ELSE longest_streak END,
                   updated_at = NOW()
               WHERE id = $1
               RETURNING ` + templateColumns
	tpl, err := scanTemplate(r.db.QueryRowContext(ctx, query, templateID, completed))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("error applying completion outcome: %w", err)
	}
	return tpl, nil
}

// CreateWorkItem inserts a work item with conflict-ignore semantics on the
// partial (template_id, due_date) unique index. The losing writer of a
// concurrent sweep gets ErrDuplicateWorkItem, which callers absorb as a
// no-op.
func (r *PostgresTaskRepository) CreateWorkItem(ctx context.Context, item *task.WorkItem) error {
	query := `INSERT INTO work_items (title, description, due_date, template_id, team_id, assignee_id, status)
               VALUES ($1, $2, $3, $4, $5, $6, $7)
               ON CONFLICT (template_id, due_date) WHERE template_id IS NOT NULL DO NOTHING
               RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		item.Title, item.Description, item.DueDate, item.TemplateID, item.TeamID, item.AssigneeID, item.Status,
	).Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrDuplicateWorkItem
		}
		return fmt.Errorf("error creating work item: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepository) ListTemplatesByKeyResult(ctx context.Context, keyResultID int64) ([]*task.RecurringTaskTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_task_templates
               WHERE key_result_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, keyResultID)
	if err != nil {
		return nil, fmt.Errorf("error querying templates by key result: %w", err)
	}
	defer rows.Close()

	templates := make([]*task.RecurringTaskTemplate, 0)
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning template row: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template rows: %w", err)
	}
	return templates, nil
}

func (r *PostgresTaskRepository) CountWorkItemsForTemplate(ctx context.Context, templateID int64) (int, error) {
	query := `SELECT COUNT(*) FROM work_items WHERE template_id = $1`
	var count int
	if err := r.db.QueryRowContext(ctx, query, templateID).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting work items for template: %w", err)
	}
	return count, nil
}

func (r *PostgresTaskRepository) ListWorkItemsByTemplate(ctx context.Context, templateID int64) ([]*task.WorkItem, error) {
	query := `SELECT id, title, description, due_date, template_id, team_id, assignee_id, status, created_at
               FROM work_items WHERE template_id = $1 ORDER BY due_date`
	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("error querying work items by template: %w", err)
	}
	defer rows.Close()

	items := make([]*task.WorkItem, 0)
	for rows.Next() {
		item := task.WorkItem{}
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.DueDate,
			&item.TemplateID, &item.TeamID, &item.AssigneeID, &item.Status, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning work item row: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating work item rows: %w", err)
	}
	return items, nil
}
