// internal/domain/activity/logger.go
package activity

import (
	"context"

	"cadence_engine/internal/domain/task"
)

// Logger is the boundary to the external activity-log collaborator. The log
// is append-only; entries are never updated or deleted. A failure to append
// must never block generation — callers log the error and move on.
type Logger interface {
	Append(ctx context.Context, entry *task.ActivityEntry) error
}
