package model

import (
	"encoding/json"
	"time"
)

// PlatformStat is a per-connection, per-day snapshot of platform counters.
// Keyed uniquely by (connection_id, date); upserted by adapter syncs,
// never deleted. One row per platform per day.
type PlatformStat struct {
	ID             int64           `json:"id"`
	ConnectionID   int64           `json:"connection_id"`
	UserID         int64           `json:"user_id"`
	Platform       Platform        `json:"platform"`
	Date           time.Time       `json:"date"` // local midnight
	Commits        int             `json:"commits"`
	PullRequests   int             `json:"pull_requests"`
	Issues         int             `json:"issues"`
	Reviews        int             `json:"reviews"`
	EasySolved     int             `json:"easy_solved"`
	MediumSolved   int             `json:"medium_solved"`
	HardSolved     int             `json:"hard_solved"`
	Contests       int             `json:"contests"`
	Rating         int             `json:"rating"`
	TasksCompleted int             `json:"tasks_completed"`
	EventsAttended int             `json:"events_attended"`
	RawDetail      json.RawMessage `json:"raw_detail,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ProblemsSolved sums the difficulty buckets.
func (s *PlatformStat) ProblemsSolved() int {
	return s.EasySolved + s.MediumSolved + s.HardSolved
}

// PlatformUser is the identity an adapter resolves for a connection.
type PlatformUser struct {
	ExternalID  string `json:"external_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// StatTotals is an aggregation of counters over some window, used by the
// points calculator and period-scoped leaderboards.
type StatTotals struct {
	Commits        int `json:"commits"`
	PullRequests   int `json:"pull_requests"`
	Issues         int `json:"issues"`
	Reviews        int `json:"reviews"`
	EasySolved     int `json:"easy_solved"`
	MediumSolved   int `json:"medium_solved"`
	HardSolved     int `json:"hard_solved"`
	TasksCompleted int `json:"tasks_completed"`
	EventsAttended int `json:"events_attended"`
}

func (t StatTotals) ProblemsSolved() int {
	return t.EasySolved + t.MediumSolved + t.HardSolved
}
