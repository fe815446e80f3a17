// internal/infra/database/cadence_columns.go
package database

import (
	"database/sql"
	"time"

	"cadence_engine/internal/domain/cadence"
)

// cadenceColumns maps the flattened cadence_* columns used by teams,
// objectives and recurring task templates onto a cadence.Spec. The domain
// side is a tagged union; the row side stores every field nullable and the
// spec's Validate decides which must be present.
type cadenceColumns struct {
	kind       sql.NullString
	weekday    sql.NullInt64
	nth        sql.NullInt64
	dayOfMonth sql.NullInt64
	periodDays sql.NullInt64
	hour       sql.NullInt64
	minute     sql.NullInt64
	timezone   sql.NullString
	duration   sql.NullInt64
}

// scanTargets returns the column pointers in schema order:
// cadence_kind, cadence_weekday, cadence_nth, cadence_day_of_month,
// cadence_period_days, cadence_hour, cadence_minute, cadence_timezone,
// cadence_duration_minutes.
func (c *cadenceColumns) scanTargets() []any {
	return []any{&c.kind, &c.weekday, &c.nth, &c.dayOfMonth, &c.periodDays, &c.hour, &c.minute, &c.timezone, &c.duration}
}

// spec reconstructs the Spec, or nil when no cadence is configured
// (kind column is null).
func (c *cadenceColumns) spec() *cadence.Spec {
	if !c.kind.Valid {
		return nil
	}
	return &cadence.Spec{
		Kind:            cadence.Kind(c.kind.String),
		Weekday:         time.Weekday(c.weekday.Int64),
		Nth:             cadence.Nth(c.nth.Int64),
		DayOfMonth:      int(c.dayOfMonth.Int64),
		PeriodDays:      int(c.periodDays.Int64),
		Hour:            int(c.hour.Int64),
		Minute:          int(c.minute.Int64),
		Timezone:        c.timezone.String,
		DurationMinutes: int(c.duration.Int64),
	}
}
