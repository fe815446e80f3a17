// internal/infra/database/postgres_activity_log.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"cadence_engine/internal/domain/task"
)

// PostgresActivityLog appends audit entries to the append-only
// 'task_activity_log' table. There are deliberately no update or delete
// methods.
type PostgresActivityLog struct {
	db *sql.DB
}

func NewPostgresActivityLog(db *sql.DB) *PostgresActivityLog {
	return &PostgresActivityLog{db: db}
}

func (l *PostgresActivityLog) Append(ctx context.Context, entry *task.ActivityEntry) error {
	query := `INSERT INTO task_activity_log (template_id, entry_date, outcome, work_item_id)
               VALUES ($1, $2, $3, $4)`
	if _, err := l.db.ExecContext(ctx, query, entry.TemplateID, entry.Date, entry.Outcome, entry.WorkItemID); err != nil {
		return fmt.Errorf("error appending activity entry: %w", err)
	}
	return nil
}
