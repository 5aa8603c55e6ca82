package model

import "time"

// ActivityHeatmapEntry is the per (user, date) rollup across all of the
// user's connections. totalActivities is always the sum of the component
// counters; the row is recomputed idempotently from source tables.
type ActivityHeatmapEntry struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	Date            time.Time `json:"date"`
	Commits         int       `json:"commits"`
	ProblemsSolved  int       `json:"problems_solved"`
	TasksCompleted  int       `json:"tasks_completed"`
	CalendarEvents  int       `json:"calendar_events"`
	TotalActivities int       `json:"total_activities"`
	ActivityScore   int       `json:"activity_score"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HeatmapSummary covers a trailing N-day window for reporting.
type HeatmapSummary struct {
	Days            int     `json:"days"`
	ActiveDays      int     `json:"active_days"`
	TotalActivities int     `json:"total_activities"`
	TotalScore      int     `json:"total_score"`
	AverageScore    float64 `json:"average_score"`
}

// StreakState is derived from the heatmap ledger and cached on the user.
type StreakState struct {
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}
