package repository

import (
	"context"
	"time"

	"dev-pulse/domain/model"
)

// ILeaderboard stores ranking generations. Generations accumulate with
// their calculation timestamp; only the newest per (period, platform)
// is read back.
type ILeaderboard interface {
	InsertGeneration(ctx context.Context, entries []model.LeaderboardEntry) error
	// LatestGeneration returns the most recent generation limited to
	// `limit` rows plus the timestamp it was calculated at. A zero
	// timestamp means no generation exists yet.
	LatestGeneration(ctx context.Context, period model.Period, platform *model.Platform, limit int) ([]model.LeaderboardEntry, time.Time, error)
}
