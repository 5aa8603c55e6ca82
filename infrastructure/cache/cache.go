package cache

import (
	"context"

	"github.com/redis/go-redis/v9"

	"dev-pulse/infrastructure/logger"
)

// NewCache connects the shared redis client used by the job queue and the
// leaderboard cache.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis ping failed")
		return client, err
	}
	return client, nil
}
