package repository

import (
	"context"

	"dev-pulse/domain/model"
)

// ISyncJob is the append-mostly audit log of sync attempts.
type ISyncJob interface {
	Create(ctx context.Context, job *model.SyncJob) (int64, error)
	MarkProcessing(ctx context.Context, id int64, attempt int) error
	MarkCompleted(ctx context.Context, id int64) error
	MarkFailed(ctx context.Context, id int64, errorMessage string) error
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.SyncJob, error)
}
