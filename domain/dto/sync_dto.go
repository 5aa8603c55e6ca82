package dto

import (
	"time"

	"dev-pulse/domain/model"
)

// ReqConnectPlatform links an external account to the authenticated user.
type ReqConnectPlatform struct {
	Platform         string `json:"platform" binding:"required"`
	ExternalUsername string `json:"external_username" binding:"required"`
	Credential       string `json:"credential"`
	// Cron spec for the recurring refresh; empty uses the configured default.
	Schedule string `json:"schedule,omitempty"`
}

// ReqTriggerSync requests an on-demand sync for one platform.
type ReqTriggerSync struct {
	Platform string `json:"platform" binding:"required"`
}

// SyncOutcome is the per-platform result of a fan-out sync trigger.
type SyncOutcome struct {
	Platform     model.Platform `json:"platform"`
	ConnectionID int64          `json:"connection_id"`
	Enqueued     bool           `json:"enqueued"`
	Error        string         `json:"error,omitempty"`
}

// SyncStatusItem reports one connection's sync state.
type SyncStatusItem struct {
	ConnectionID int64            `json:"connection_id"`
	Platform     model.Platform   `json:"platform"`
	SyncStatus   model.SyncStatus `json:"sync_status"`
	LastSynced   *time.Time       `json:"last_synced,omitempty"`
}

// UserStats is the aggregate view served by GetUserStats.
type UserStats struct {
	UserID        int64             `json:"user_id"`
	TotalPoints   int64             `json:"total_points"`
	CurrentStreak int               `json:"current_streak"`
	LongestStreak int               `json:"longest_streak"`
	MissionPoints int               `json:"mission_points"`
	Totals        model.StatTotals  `json:"totals"`
	Connections   []SyncStatusItem  `json:"connections"`
	LastActivity  *time.Time        `json:"last_activity,omitempty"`
}

// HeatmapResponse is the trailing-window heatmap view.
type HeatmapResponse struct {
	Days    int                          `json:"days"`
	Entries []model.ActivityHeatmapEntry `json:"entries"`
	Summary model.HeatmapSummary         `json:"summary"`
}
