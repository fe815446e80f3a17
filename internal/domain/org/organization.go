// internal/domain/org/organization.go
package org

import (
	"context"
	"time"
)

// Settings are organization-level knobs consumed by the generation engine.
// They are owned by external settings storage; the engine only reads them.
type Settings struct {
	// LookaheadDays is how far ahead the organization expects occurrences
	// and work items to be generated proactively. Template due dates beyond
	// twice this horizon draw a validation warning (not a hard block).
	LookaheadDays int

	AutoGenerateMeetings bool
	AutoGenerateTasks    bool
}

// Organization is the tenant boundary. Every entry point takes an explicit
// organization id; there is no ambient default.
type Organization struct {
	ID        int64
	Name      string
	Settings  Settings
	CreatedAt time.Time
}

// Repository reads organizations and their settings.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Organization, error)
	ListActive(ctx context.Context) ([]*Organization, error)
}
