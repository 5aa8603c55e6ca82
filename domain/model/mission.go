package model

import "time"

// Mission is a static definition worth bonus points on completion.
type Mission struct {
	ID          int64  `json:"id"`
	Code        string `json:"code"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Points      int    `json:"points"`
	IsActive    bool   `json:"is_active"`
}

// UserMission tracks a user's progress against one mission.
type UserMission struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	MissionID   int64      `json:"mission_id"`
	Progress    int        `json:"progress"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
