package repository

import (
	"context"

	"dev-pulse/domain/model"
)

// IConnection persists platform connections. SetSyncStatus is the only
// mutation path for the sync state machine; it also stamps last_synced on
// COMPLETED and records the truncated error message on FAILED.
type IConnection interface {
	Create(ctx context.Context, conn *model.PlatformConnection) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.PlatformConnection, error)
	GetActiveByUser(ctx context.Context, userID int64) ([]*model.PlatformConnection, error)
	GetActiveByUserAndPlatform(ctx context.Context, userID int64, platform model.Platform) (*model.PlatformConnection, error)
	ListActive(ctx context.Context) ([]*model.PlatformConnection, error)
	SetSyncStatus(ctx context.Context, id int64, status model.SyncStatus, errorMessage *string) error
	// Deactivate soft-deletes the connection; the row is kept for history.
	Deactivate(ctx context.Context, id int64) error
}
