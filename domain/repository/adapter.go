package repository

import (
	"context"

	"dev-pulse/domain/model"
)

// IPlatformAdapter is the contract every platform client implements.
// SyncData either completes, having upserted the day's PlatformStat rows,
// or returns a typed error the worker can classify.
type IPlatformAdapter interface {
	Platform() model.Platform
	FetchUserData(ctx context.Context, conn *model.PlatformConnection) (*model.PlatformUser, error)
	SyncData(ctx context.Context, userID, connectionID int64) error
}

// ICredentialVault reveals a connection's opaque credential blob. The core
// never inspects or logs credentials in clear form; a malformed blob is a
// fatal per-connection error, not a retryable one.
type ICredentialVault interface {
	Seal(plaintext string) (string, error)
	Reveal(blob string) (string, error)
}

// IRawArchive keeps the raw adapter payload per sync for debugging and
// replay. Implementations may be absent; callers treat it best-effort.
type IRawArchive interface {
	Store(ctx context.Context, connectionID int64, platform model.Platform, day string, payload []byte) error
}
