package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"dev-pulse/domain/model"
)

func TestSyncStatusTransitions(t *testing.T) {
	allowed := map[model.SyncStatus][]model.SyncStatus{
		model.SyncStatusPending:   {model.SyncStatusSyncing},
		model.SyncStatusSyncing:   {model.SyncStatusCompleted, model.SyncStatusFailed},
		model.SyncStatusCompleted: {model.SyncStatusPending},
		model.SyncStatusFailed:    {model.SyncStatusPending},
	}

	all := []model.SyncStatus{
		model.SyncStatusPending,
		model.SyncStatusSyncing,
		model.SyncStatusCompleted,
		model.SyncStatusFailed,
	}
	for from, nexts := range allowed {
		ok := map[model.SyncStatus]bool{}
		for _, next := range nexts {
			ok[next] = true
		}
		for _, to := range all {
			assert.Equal(t, ok[to], from.CanTransition(to), "%s -> %s", from, to)
		}
	}
}

func TestSyncStatusCannotSkipSyncing(t *testing.T) {
	assert.False(t, model.SyncStatusPending.CanTransition(model.SyncStatusCompleted))
	assert.False(t, model.SyncStatusPending.CanTransition(model.SyncStatusFailed))
}

func TestPlatformValid(t *testing.T) {
	for _, p := range model.AllPlatforms() {
		assert.True(t, p.Valid(), string(p))
	}
	assert.False(t, model.Platform("myspace").Valid())
	assert.False(t, model.Platform("").Valid())
}

func TestPeriodStart(t *testing.T) {
	// A Wednesday.
	now := time.Date(2025, time.March, 12, 15, 30, 45, 0, time.Local)

	assert.Equal(t, time.Date(2025, time.March, 12, 0, 0, 0, 0, time.Local), model.PeriodDaily.Start(now))
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local), model.PeriodWeekly.Start(now))
	assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.Local), model.PeriodMonthly.Start(now))
	assert.True(t, model.PeriodAllTime.Start(now).IsZero())
}

func TestPeriodStart_WeekStartsMondayOnSunday(t *testing.T) {
	sunday := time.Date(2025, time.March, 16, 9, 0, 0, 0, time.Local)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.Local), model.PeriodWeekly.Start(sunday))
}

func TestSyncJobKey_CoalescesWithinBucket(t *testing.T) {
	base := time.Date(2025, time.March, 12, 10, 2, 0, 0, time.UTC)

	first := model.SyncJobKey(model.PlatformGitHub, 7, base, 5*time.Minute)
	sameBucket := model.SyncJobKey(model.PlatformGitHub, 7, base.Add(2*time.Minute), 5*time.Minute)
	nextBucket := model.SyncJobKey(model.PlatformGitHub, 7, base.Add(5*time.Minute), 5*time.Minute)

	assert.Equal(t, first, sameBucket)
	assert.NotEqual(t, first, nextBucket)
}

func TestSyncJobKey_DistinctPerConnection(t *testing.T) {
	at := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)
	assert.NotEqual(t,
		model.SyncJobKey(model.PlatformGitHub, 7, at, time.Minute),
		model.SyncJobKey(model.PlatformGitHub, 8, at, time.Minute))
	assert.NotEqual(t,
		model.SyncJobKey(model.PlatformGitHub, 7, at, time.Minute),
		model.SyncJobKey(model.PlatformLeetCode, 7, at, time.Minute))
}

func TestRecalcJobKey_PerUserAndDay(t *testing.T) {
	assert.Equal(t, model.RecalcJobKey(1, "2025-03-12"), model.RecalcJobKey(1, "2025-03-12"))
	assert.NotEqual(t, model.RecalcJobKey(1, "2025-03-12"), model.RecalcJobKey(1, "2025-03-13"))
	assert.NotEqual(t, model.RecalcJobKey(1, "2025-03-12"), model.RecalcJobKey(2, "2025-03-12"))
}
