package usecase

import (
	"context"
	"time"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/dto"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/logger"
)

type IStatsUsecase interface {
	GetUserStats(ctx context.Context, userID int64) (*dto.UserStats, error)
	// Recalculate rebuilds the heatmap day, then the streak, then the
	// cached points. Safe to run any number of times for the same day.
	Recalculate(ctx context.Context, userID int64, day string) error
}

type statsUsecase struct {
	users       repository.IUser
	stats       repository.IPlatformStat
	connections repository.IConnection
	missions    repository.IMission
	heatmap     IHeatmapUsecase
	streak      IStreakUsecase
	points      IPointsUsecase
}

func NewStatsUsecase(
	users repository.IUser,
	stats repository.IPlatformStat,
	connections repository.IConnection,
	missions repository.IMission,
	heatmap IHeatmapUsecase,
	streak IStreakUsecase,
	points IPointsUsecase,
) IStatsUsecase {
	return &statsUsecase{
		users:       users,
		stats:       stats,
		connections: connections,
		missions:    missions,
		heatmap:     heatmap,
		streak:      streak,
		points:      points,
	}
}

func (u *statsUsecase) GetUserStats(ctx context.Context, userID int64) (*dto.UserStats, error) {
	user, err := u.users.GetById(ctx, userID)
	if err != nil {
		return nil, err
	}
	totals, err := u.stats.Totals(ctx, userID, time.Time{}, nil)
	if err != nil {
		return nil, err
	}
	missionPoints, _, err := u.missions.CompletedPoints(ctx, userID, time.Time{})
	if err != nil {
		return nil, err
	}
	connections, err := u.connections.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SyncStatusItem, 0, len(connections))
	for _, conn := range connections {
		items = append(items, dto.SyncStatusItem{
			ConnectionID: conn.ID,
			Platform:     conn.Platform,
			SyncStatus:   conn.SyncStatus,
			LastSynced:   conn.LastSynced,
		})
	}

	return &dto.UserStats{
		UserID:        user.ID,
		TotalPoints:   user.TotalPoints,
		CurrentStreak: user.CurrentStreak,
		LongestStreak: user.LongestStreak,
		MissionPoints: missionPoints,
		Totals:        totals,
		Connections:   items,
		LastActivity:  user.LastActivityDate,
	}, nil
}

func (u *statsUsecase) Recalculate(ctx context.Context, userID int64, day string) error {
	// Day keys are UTC calendar days (utils.DayKey); parse them back in
	// the same zone or the heatmap row lands on a neighboring date.
	date, err := time.ParseInLocation("2006-01-02", day, time.UTC)
	if err != nil {
		return apperror.Validation("invalid recalculation day: "+day, err)
	}

	if _, err := u.heatmap.RecalculateDay(ctx, userID, date); err != nil {
		return err
	}
	if _, err := u.streak.Recalculate(ctx, userID); err != nil {
		return err
	}
	if _, err := u.points.RecalculateTotal(ctx, userID); err != nil {
		return err
	}
	logger.GetLogger().
		WithField("userId", userID).
		WithField("day", day).
		Debug("Stats recalculated")
	return nil
}
