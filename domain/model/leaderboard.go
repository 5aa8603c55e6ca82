package model

import "time"

// Period is a leaderboard scoring window.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodAllTime Period = "all_time"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime:
		return true
	}
	return false
}

// Start returns the inclusive lower bound of the period relative to now,
// using local midnight boundaries. All-time has no bound and returns the
// zero time.
func (p Period) Start(now time.Time) time.Time {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch p {
	case PeriodDaily:
		return midnight
	case PeriodWeekly:
		// Week starts Monday.
		offset := (int(now.Weekday()) + 6) % 7
		return midnight.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	}
	return time.Time{}
}

// LeaderboardEntry is one cached ranking row. Multiple generations
// accumulate per period; only the most recent is served.
type LeaderboardEntry struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	UserName          string    `json:"user_name"`
	Period            Period    `json:"period"`
	Platform          *Platform `json:"platform,omitempty"` // nil = global
	Rank              int       `json:"rank"`
	Score             int64     `json:"score"`
	CurrentStreak     int       `json:"current_streak"`
	Commits           int       `json:"commits"`
	ProblemsSolved    int       `json:"problems_solved"`
	TasksCompleted    int       `json:"tasks_completed"`
	MissionsCompleted int       `json:"missions_completed"`
	CalculatedAt      time.Time `json:"calculated_at"`
}
