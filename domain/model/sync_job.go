package model

import "time"

// SyncJobStatus is the lifecycle of one queued synchronization attempt.
type SyncJobStatus string

const (
	SyncJobPending    SyncJobStatus = "PENDING"
	SyncJobProcessing SyncJobStatus = "PROCESSING"
	SyncJobCompleted  SyncJobStatus = "COMPLETED"
	SyncJobFailed     SyncJobStatus = "FAILED"
)

func (s SyncJobStatus) Valid() bool {
	switch s {
	case SyncJobPending, SyncJobProcessing, SyncJobCompleted, SyncJobFailed:
		return true
	}
	return false
}

// SyncJob is the historical audit record of a sync attempt. It is distinct
// from the durable queue entry: the queue drives retries, this row records
// what happened.
type SyncJob struct {
	ID           int64         `json:"id"`
	JobKey       string        `json:"job_key"`
	UserID       int64         `json:"user_id"`
	ConnectionID int64         `json:"connection_id"`
	Platform     Platform      `json:"platform"`
	Status       SyncJobStatus `json:"status"`
	Attempts     int           `json:"attempts"`
	LastError    *string       `json:"last_error,omitempty"`
	StartedAt    *time.Time    `json:"started_at,omitempty"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
