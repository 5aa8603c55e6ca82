package configuration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	cfg := &Config{}
	initDefaults(cfg)

	require.Equal(t, 3, cfg.Queue.MaxAttempts)
	require.Equal(t, 30*time.Second, cfg.Queue.BackoffBase)
	require.Equal(t, time.Hour, cfg.Queue.BackoffCap)
	require.Equal(t, 5*time.Minute, cfg.Queue.DedupBucket)
	require.Equal(t, 4, cfg.Queue.WorkerPoolSize)
	require.Equal(t, "*/30 * * * *", cfg.Scheduler.DefaultCron)
	require.Equal(t, time.Hour, cfg.Leaderboard.CacheTTL)
	require.Equal(t, 1000, cfg.Leaderboard.CandidateCap)
}

func TestInitDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Queue.MaxAttempts = 7
	cfg.Leaderboard.CacheTTL = 10 * time.Minute
	initDefaults(cfg)

	require.Equal(t, 7, cfg.Queue.MaxAttempts)
	require.Equal(t, 10*time.Minute, cfg.Leaderboard.CacheTTL)
}

func TestConfiguration(t *testing.T) {
	require.NotNil(t, &C, "Configuration should not be nil")
	require.NotNil(t, &C.App, "App configuration should exist")
	require.NotNil(t, &C.Database, "Database configuration should exist")
}
