package usecase

import (
	"context"
	"sort"
	"time"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/cache"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/infrastructure/utils"
)

type ILeaderboardUsecase interface {
	// GetLeaderboard serves the newest generation, recomputing when the
	// cached one is older than the configured TTL.
	GetLeaderboard(ctx context.Context, period model.Period, platform *model.Platform, limit int) ([]model.LeaderboardEntry, error)
	// Recalculate builds a fresh generation and stores it.
	Recalculate(ctx context.Context, period model.Period, platform *model.Platform) ([]model.LeaderboardEntry, error)
}

type leaderboardUsecase struct {
	leaderboard repository.ILeaderboard
	users       repository.IUser
	points      IPointsUsecase
	cache       cache.ILeaderboardCache

	cacheTTL     time.Duration
	candidateCap int
}

func NewLeaderboardUsecase(
	leaderboard repository.ILeaderboard,
	users repository.IUser,
	points IPointsUsecase,
	lbCache cache.ILeaderboardCache,
	cacheTTL time.Duration,
	candidateCap int,
) ILeaderboardUsecase {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	if candidateCap <= 0 {
		candidateCap = 1000
	}
	return &leaderboardUsecase{
		leaderboard:  leaderboard,
		users:        users,
		points:       points,
		cache:        lbCache,
		cacheTTL:     cacheTTL,
		candidateCap: candidateCap,
	}
}

func (u *leaderboardUsecase) GetLeaderboard(ctx context.Context, period model.Period, platform *model.Platform, limit int) ([]model.LeaderboardEntry, error) {
	if !period.Valid() {
		return nil, apperror.Validation("unknown period: "+string(period), nil)
	}
	if platform != nil && !platform.Valid() {
		return nil, apperror.Validation("unknown platform: "+string(*platform), nil)
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	now := utils.GetCurrentTime()

	if u.cache != nil {
		entries, calculatedAt, err := u.cache.Get(ctx, period, platform)
		if err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while reading leaderboard cache")
		} else if !calculatedAt.IsZero() && now.Sub(calculatedAt) < u.cacheTTL {
			return clip(entries, limit), nil
		}
	}

	entries, calculatedAt, err := u.leaderboard.LatestGeneration(ctx, period, platform, limit)
	if err != nil {
		return nil, err
	}
	if !calculatedAt.IsZero() && now.Sub(calculatedAt) < u.cacheTTL {
		return entries, nil
	}

	fresh, err := u.Recalculate(ctx, period, platform)
	if err != nil {
		// A stale generation beats an error page.
		if !calculatedAt.IsZero() {
			logger.GetLogger().WithField("error", err).Error("Error while recalculating leaderboard - serving stale generation")
			return entries, nil
		}
		return nil, err
	}
	return clip(fresh, limit), nil
}

func (u *leaderboardUsecase) Recalculate(ctx context.Context, period model.Period, platform *model.Platform) ([]model.LeaderboardEntry, error) {
	now := utils.GetCurrentTime()
	candidates, err := u.users.ActiveIDs(ctx, u.candidateCap)
	if err != nil {
		return nil, err
	}

	entries := make([]model.LeaderboardEntry, 0, len(candidates))
	for _, userID := range candidates {
		score, totals, missionCount, err := u.points.PeriodScore(ctx, userID, period, platform, now)
		if err != nil {
			logger.GetLogger().
				WithField("userId", userID).
				WithField("error", err).
				Error("Error while scoring leaderboard candidate")
			continue
		}
		user, err := u.users.GetById(ctx, userID)
		if err != nil {
			continue
		}
		entries = append(entries, model.LeaderboardEntry{
			UserID:            userID,
			UserName:          user.UserName,
			Period:            period,
			Platform:          platform,
			Score:             score,
			CurrentStreak:     user.CurrentStreak,
			Commits:           totals.Commits,
			ProblemsSolved:    totals.ProblemsSolved(),
			TasksCompleted:    totals.TasksCompleted,
			MissionsCompleted: missionCount,
			CalculatedAt:      now,
		})
	}

	// Score descending, ties broken by ascending user id so equal scores
	// rank deterministically. Ranks are 1-based and contiguous.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	if len(entries) > 0 {
		if err := u.leaderboard.InsertGeneration(ctx, entries); err != nil {
			return nil, err
		}
	}
	if u.cache != nil {
		if err := u.cache.Set(ctx, period, platform, entries, now, u.cacheTTL); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Error while writing leaderboard cache")
		}
	}
	return entries, nil
}

func clip(entries []model.LeaderboardEntry, limit int) []model.LeaderboardEntry {
	if len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
