package repository

import (
	"context"

	"dev-pulse/domain/model"
)

type IUser interface {
	GetById(ctx context.Context, id int64) (model.User, error)
	GetByUserName(ctx context.Context, userName string) (model.User, error)
	CreateUser(ctx context.Context, user model.User) error
	// UpdateTotalPoints writes the cached lifetime points.
	UpdateTotalPoints(ctx context.Context, userID int64, totalPoints int64) error
	// UpdateStreak writes the cached streak projection.
	UpdateStreak(ctx context.Context, userID int64, streak model.StreakState) error
	// ActiveIDs returns candidate user ids for ranking, ascending,
	// capped at limit.
	ActiveIDs(ctx context.Context, limit int) ([]int64, error)
}
