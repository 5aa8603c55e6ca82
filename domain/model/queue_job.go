package model

import (
	"fmt"
	"time"
)

// Lane separates the two kinds of queued work.
type Lane string

const (
	LaneSync   Lane = "platform-sync"
	LaneRecalc Lane = "stats-recalc"
)

func (l Lane) Valid() bool {
	return l == LaneSync || l == LaneRecalc
}

// QueueJob is the durable queue entry. It is distinct from the SyncJob
// audit row: the queue entry drives execution and retry, the audit row
// records history.
type QueueJob struct {
	ID           string    `json:"id"`
	Lane         Lane      `json:"lane"`
	Key          string    `json:"key"`
	UserID       int64     `json:"user_id"`
	ConnectionID int64     `json:"connection_id,omitempty"`
	Platform     Platform  `json:"platform,omitempty"`
	Date         string    `json:"date,omitempty"` // YYYY-MM-DD for recalc jobs
	Attempts     int       `json:"attempts"`
	MaxAttempts  int       `json:"max_attempts"`
	SyncJobID    int64     `json:"sync_job_id,omitempty"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
}

// SyncJobKey buckets enqueue time so duplicate triggers for the same
// connection inside one bucket coalesce instead of running twice.
func SyncJobKey(platform Platform, connectionID int64, enqueuedAt time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = 5 * time.Minute
	}
	return fmt.Sprintf("%s:%s:%d:%d", LaneSync, platform, connectionID, enqueuedAt.UTC().Truncate(bucket).Unix())
}

// RecalcJobKey dedups stats recalculation per (user, day).
func RecalcJobKey(userID int64, date string) string {
	return fmt.Sprintf("%s:%d:%s", LaneRecalc, userID, date)
}
