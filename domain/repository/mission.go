package repository

import (
	"context"
	"time"

	"dev-pulse/domain/model"
)

// IMission reads mission definitions and per-user completion state.
// The scoring core consumes this read-only.
type IMission interface {
	// CompletedPoints sums mission-defined points for missions the user
	// completed at or after `since` (zero time means lifetime). Also
	// returns the completion count.
	CompletedPoints(ctx context.Context, userID int64, since time.Time) (points int, count int, err error)
	ListByUser(ctx context.Context, userID int64) ([]model.UserMission, error)
}
