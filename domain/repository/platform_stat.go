package repository

import (
	"context"
	"time"

	"dev-pulse/domain/model"
)

// IPlatformStat persists per-connection daily counter snapshots.
type IPlatformStat interface {
	// Upsert writes the (connection_id, date) snapshot. The write is
	// discarded when the owning connection is no longer active, so a
	// late-arriving sync result for a disconnected account never lands.
	Upsert(ctx context.Context, stat *model.PlatformStat) error
	GetByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*model.PlatformStat, error)
	// Totals aggregates counters for a user from `since` (zero time means
	// lifetime). A nil platform aggregates across all platforms.
	Totals(ctx context.Context, userID int64, since time.Time, platform *model.Platform) (model.StatTotals, error)
}
