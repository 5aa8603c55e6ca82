package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dev-pulse/domain/model"
	"dev-pulse/infrastructure/logger"
)

// ILeaderboardCache serves the newest ranking generation without hitting
// the relational store on every read.
type ILeaderboardCache interface {
	Get(ctx context.Context, period model.Period, platform *model.Platform) ([]model.LeaderboardEntry, time.Time, error)
	Set(ctx context.Context, period model.Period, platform *model.Platform, entries []model.LeaderboardEntry, calculatedAt time.Time, ttl time.Duration) error
}

type cachedGeneration struct {
	CalculatedAt time.Time                `json:"calculated_at"`
	Entries      []model.LeaderboardEntry `json:"entries"`
}

// LeaderboardCache is the redis implementation. A nil client degrades to
// a permanent miss so the usecase recomputes from the database.
type LeaderboardCache struct {
	client *redis.Client
}

func NewLeaderboardCache(client *redis.Client) ILeaderboardCache {
	return &LeaderboardCache{client: client}
}

func leaderboardKey(period model.Period, platform *model.Platform) string {
	if platform == nil {
		return fmt.Sprintf("leaderboard:%s:global", period)
	}
	return fmt.Sprintf("leaderboard:%s:%s", period, *platform)
}

func (c *LeaderboardCache) Get(ctx context.Context, period model.Period, platform *model.Platform) ([]model.LeaderboardEntry, time.Time, error) {
	if c.client == nil {
		return nil, time.Time{}, nil
	}
	raw, err := c.client.Get(ctx, leaderboardKey(period, platform)).Bytes()
	if err == redis.Nil {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}
	var gen cachedGeneration
	if err := json.Unmarshal(raw, &gen); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Corrupt leaderboard cache entry - treating as miss")
		return nil, time.Time{}, nil
	}
	return gen.Entries, gen.CalculatedAt, nil
}

func (c *LeaderboardCache) Set(ctx context.Context, period model.Period, platform *model.Platform, entries []model.LeaderboardEntry, calculatedAt time.Time, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(cachedGeneration{CalculatedAt: calculatedAt, Entries: entries})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, leaderboardKey(period, platform), raw, ttl).Err()
}
