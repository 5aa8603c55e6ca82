package usecase

import (
	"context"
	"time"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/dto"
	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/utils"
)

// Heatmap score weights.
const (
	HeatmapWeightCommit  = 5
	HeatmapWeightProblem = 10
	HeatmapWeightTask    = 3
	HeatmapWeightEvent   = 1
)

type IHeatmapUsecase interface {
	// RecalculateDay rebuilds the (user, date) rollup from the day's
	// platform stats. Running it twice yields the same row.
	RecalculateDay(ctx context.Context, userID int64, date time.Time) (*model.ActivityHeatmapEntry, error)
	GetHeatmap(ctx context.Context, userID int64, days int) (*dto.HeatmapResponse, error)
}

type heatmapUsecase struct {
	stats   repository.IPlatformStat
	heatmap repository.IHeatmap
}

func NewHeatmapUsecase(stats repository.IPlatformStat, heatmap repository.IHeatmap) IHeatmapUsecase {
	return &heatmapUsecase{stats: stats, heatmap: heatmap}
}

func (u *heatmapUsecase) RecalculateDay(ctx context.Context, userID int64, date time.Time) (*model.ActivityHeatmapEntry, error) {
	day := utils.Midnight(date)
	rows, err := u.stats.GetByUserAndDate(ctx, userID, day)
	if err != nil {
		return nil, err
	}

	entry := &model.ActivityHeatmapEntry{UserID: userID, Date: day}
	for _, row := range rows {
		entry.Commits += row.Commits
		entry.ProblemsSolved += row.ProblemsSolved()
		entry.TasksCompleted += row.TasksCompleted
		entry.CalendarEvents += row.EventsAttended
	}
	entry.TotalActivities = entry.Commits + entry.ProblemsSolved + entry.TasksCompleted + entry.CalendarEvents
	entry.ActivityScore = entry.Commits*HeatmapWeightCommit +
		entry.ProblemsSolved*HeatmapWeightProblem +
		entry.TasksCompleted*HeatmapWeightTask +
		entry.CalendarEvents*HeatmapWeightEvent

	if err := u.heatmap.Upsert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (u *heatmapUsecase) GetHeatmap(ctx context.Context, userID int64, days int) (*dto.HeatmapResponse, error) {
	if days <= 0 {
		days = 365
	}
	if days > 730 {
		return nil, apperror.Validation("heatmap window is limited to 730 days", nil)
	}

	to := utils.Midnight(utils.GetCurrentTime())
	from := to.AddDate(0, 0, -(days - 1))
	entries, err := u.heatmap.GetRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}

	summary := model.HeatmapSummary{Days: days}
	for _, entry := range entries {
		if entry.TotalActivities > 0 {
			summary.ActiveDays++
		}
		summary.TotalActivities += entry.TotalActivities
		summary.TotalScore += entry.ActivityScore
	}
	if days > 0 {
		summary.AverageScore = float64(summary.TotalScore) / float64(days)
	}

	return &dto.HeatmapResponse{Days: days, Entries: entries, Summary: summary}, nil
}
