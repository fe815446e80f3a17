// internal/app/resolve.go
package app

import (
	"database/sql"

	"cadence_engine/internal/domain/okr"
	"cadence_engine/internal/domain/task"
)

// ResolveOwnership determines the team and assignee of a work item generated
// from a template. Precedence is explicit: the template's own field wins,
// then the owning key result's, then nothing. kr may be nil when the template
// is not attached to a key result.
func ResolveOwnership(tpl *task.RecurringTaskTemplate, kr *okr.KeyResult) (team, assignee sql.NullInt64) {
	team = tpl.TeamID
	assignee = tpl.AssigneeID
	if kr != nil {
		if !team.Valid {
			team = kr.TeamID
		}
		if !assignee.Valid {
			assignee = kr.AssigneeID
		}
	}
	return team, assignee
}
