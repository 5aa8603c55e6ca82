package model

import (
	"time"
)

// Platform identifies an external developer platform we can sync from.
type Platform string

const (
	PlatformGitHub         Platform = "github"
	PlatformLeetCode       Platform = "leetcode"
	PlatformCodeforces     Platform = "codeforces"
	PlatformGoogleCalendar Platform = "google_calendar"
	PlatformTrello         Platform = "trello"
)

// AllPlatforms returns every supported platform identifier.
func AllPlatforms() []Platform {
	return []Platform{
		PlatformGitHub,
		PlatformLeetCode,
		PlatformCodeforces,
		PlatformGoogleCalendar,
		PlatformTrello,
	}
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformGitHub, PlatformLeetCode, PlatformCodeforces, PlatformGoogleCalendar, PlatformTrello:
		return true
	}
	return false
}

// SyncStatus is the per-connection sync state machine. Transitions are
// PENDING -> SYNCING -> {COMPLETED | FAILED}; COMPLETED and FAILED may
// re-enter PENDING on a new trigger.
type SyncStatus string

const (
	SyncStatusPending   SyncStatus = "PENDING"
	SyncStatusSyncing   SyncStatus = "SYNCING"
	SyncStatusCompleted SyncStatus = "COMPLETED"
	SyncStatusFailed    SyncStatus = "FAILED"
)

func (s SyncStatus) Valid() bool {
	switch s {
	case SyncStatusPending, SyncStatusSyncing, SyncStatusCompleted, SyncStatusFailed:
		return true
	}
	return false
}

// CanTransition reports whether moving to next is a legal step.
// No path skips SYNCING on the way to a terminal state.
func (s SyncStatus) CanTransition(next SyncStatus) bool {
	switch s {
	case SyncStatusPending:
		return next == SyncStatusSyncing
	case SyncStatusSyncing:
		return next == SyncStatusCompleted || next == SyncStatusFailed
	case SyncStatusCompleted, SyncStatusFailed:
		return next == SyncStatusPending
	}
	return false
}

// PlatformConnection links a user to one external account on one platform.
// At most one active connection may exist per (user, platform,
// external username); inactive rows are kept for history.
type PlatformConnection struct {
	ID               int64             `json:"id"`
	UserID           int64             `json:"user_id"`
	Platform         Platform          `json:"platform"`
	ExternalUsername string            `json:"external_username"`
	Credential       string            `json:"-"` // encrypted blob, opaque to the core
	IsActive         bool              `json:"is_active"`
	SyncStatus       SyncStatus        `json:"sync_status"`
	LastSynced       *time.Time        `json:"last_synced,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
