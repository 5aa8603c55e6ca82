package usecase

import (
	"context"
	"time"

	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
)

// Activity point weights.
const (
	PointsPerCommit      = 5
	PointsPerPullRequest = 20
	PointsPerIssue       = 10
	PointsPerReview      = 15
	PointsPerEasy        = 10
	PointsPerMedium      = 20
	PointsPerHard        = 40
	PointsPerTask        = 5
)

// Streak bonus tiers. Only the highest reached tier applies.
const (
	StreakTierWeek     = 7
	StreakTierMonth    = 30
	StreakTierHundred  = 100
	StreakBonusWeek    = 50
	StreakBonusMonth   = 250
	StreakBonusHundred = 1000
)

type PointsBreakdown struct {
	ActivityPoints int64 `json:"activity_points"`
	MissionPoints  int64 `json:"mission_points"`
	StreakBonus    int64 `json:"streak_bonus"`
	Total          int64 `json:"total"`
}

type IPointsUsecase interface {
	// RecalculateTotal recomputes lifetime points from source tables
	// and writes the cache on the user row.
	RecalculateTotal(ctx context.Context, userID int64) (PointsBreakdown, error)
	// PeriodScore computes points earned within the period window.
	// Streak bonuses only apply to the all-time score.
	PeriodScore(ctx context.Context, userID int64, period model.Period, platform *model.Platform, now time.Time) (int64, model.StatTotals, int, error)
}

type pointsUsecase struct {
	stats    repository.IPlatformStat
	missions repository.IMission
	users    repository.IUser
}

func NewPointsUsecase(stats repository.IPlatformStat, missions repository.IMission, users repository.IUser) IPointsUsecase {
	return &pointsUsecase{stats: stats, missions: missions, users: users}
}

// ActivityPoints applies the per-counter weights.
func ActivityPoints(totals model.StatTotals) int64 {
	points := int64(0)
	points += int64(totals.Commits) * PointsPerCommit
	points += int64(totals.PullRequests) * PointsPerPullRequest
	points += int64(totals.Issues) * PointsPerIssue
	points += int64(totals.Reviews) * PointsPerReview
	points += int64(totals.EasySolved) * PointsPerEasy
	points += int64(totals.MediumSolved) * PointsPerMedium
	points += int64(totals.HardSolved) * PointsPerHard
	points += int64(totals.TasksCompleted) * PointsPerTask
	return points
}

// StreakBonus returns the bonus for the highest tier the streak has
// reached. Tiers do not stack.
func StreakBonus(currentStreak int) int64 {
	switch {
	case currentStreak >= StreakTierHundred:
		return StreakBonusHundred
	case currentStreak >= StreakTierMonth:
		return StreakBonusMonth
	case currentStreak >= StreakTierWeek:
		return StreakBonusWeek
	}
	return 0
}

func (u *pointsUsecase) RecalculateTotal(ctx context.Context, userID int64) (PointsBreakdown, error) {
	var breakdown PointsBreakdown

	totals, err := u.stats.Totals(ctx, userID, time.Time{}, nil)
	if err != nil {
		return breakdown, err
	}
	missionPoints, _, err := u.missions.CompletedPoints(ctx, userID, time.Time{})
	if err != nil {
		return breakdown, err
	}
	user, err := u.users.GetById(ctx, userID)
	if err != nil {
		return breakdown, err
	}

	breakdown.ActivityPoints = ActivityPoints(totals)
	breakdown.MissionPoints = int64(missionPoints)
	breakdown.StreakBonus = StreakBonus(user.CurrentStreak)
	breakdown.Total = breakdown.ActivityPoints + breakdown.MissionPoints + breakdown.StreakBonus

	if err := u.users.UpdateTotalPoints(ctx, userID, breakdown.Total); err != nil {
		return breakdown, err
	}
	return breakdown, nil
}

func (u *pointsUsecase) PeriodScore(ctx context.Context, userID int64, period model.Period, platform *model.Platform, now time.Time) (int64, model.StatTotals, int, error) {
	since := period.Start(now)
	totals, err := u.stats.Totals(ctx, userID, since, platform)
	if err != nil {
		return 0, model.StatTotals{}, 0, err
	}
	missionPoints, missionCount, err := u.missions.CompletedPoints(ctx, userID, since)
	if err != nil {
		return 0, model.StatTotals{}, 0, err
	}

	score := ActivityPoints(totals) + int64(missionPoints)
	if period == model.PeriodAllTime {
		user, err := u.users.GetById(ctx, userID)
		if err != nil {
			return 0, model.StatTotals{}, 0, err
		}
		score += StreakBonus(user.CurrentStreak)
	}
	return score, totals, missionCount, nil
}
