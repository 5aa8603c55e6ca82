package repository

import (
	"context"
	"time"

	"dev-pulse/domain/model"
)

// IHeatmap persists the per (user, date) activity rollup.
type IHeatmap interface {
	Upsert(ctx context.Context, entry *model.ActivityHeatmapEntry) error
	GetRange(ctx context.Context, userID int64, from, to time.Time) ([]model.ActivityHeatmapEntry, error)
	// ActiveDatesDesc returns the dates with total_activities > 0,
	// most recent first. Input for the streak calculator.
	ActiveDatesDesc(ctx context.Context, userID int64) ([]time.Time, error)
}
