package usecase

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/dto"
	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/logger"
)

// AdapterFactory builds one platform adapter. Factories run at most
// once; the registry caches the instance.
type AdapterFactory func() repository.IPlatformAdapter

type IIntegrationRegistry interface {
	Adapter(platform model.Platform) (repository.IPlatformAdapter, error)
	SyncPlatform(ctx context.Context, userID, connectionID int64, platform model.Platform) error
	// FetchUserData resolves the external identity behind a connection,
	// used to verify a link before persisting it.
	FetchUserData(ctx context.Context, conn *model.PlatformConnection) (*model.PlatformUser, error)
	// SyncAllDirect runs every active connection of the user in
	// parallel, bypassing the queue. Used by tests and admin tooling;
	// the normal path goes through TriggerSyncAll.
	SyncAllDirect(ctx context.Context, userID int64) ([]dto.SyncOutcome, error)
}

type integrationRegistry struct {
	factories   map[model.Platform]AdapterFactory
	connections repository.IConnection

	mu       sync.Mutex
	adapters map[model.Platform]repository.IPlatformAdapter
}

func NewIntegrationRegistry(factories map[model.Platform]AdapterFactory, connections repository.IConnection) IIntegrationRegistry {
	return &integrationRegistry{
		factories:   factories,
		connections: connections,
		adapters:    make(map[model.Platform]repository.IPlatformAdapter),
	}
}

// Adapter returns the lazily built singleton for the platform. An
// unknown or unconfigured platform fails before any I/O happens.
func (r *integrationRegistry) Adapter(platform model.Platform) (repository.IPlatformAdapter, error) {
	if !platform.Valid() {
		return nil, apperror.Validation("unknown platform: "+string(platform), nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if adapter, ok := r.adapters[platform]; ok {
		return adapter, nil
	}
	factory, ok := r.factories[platform]
	if !ok {
		return nil, apperror.Validation("platform not configured: "+string(platform), nil)
	}
	adapter := factory()
	r.adapters[platform] = adapter
	return adapter, nil
}

func (r *integrationRegistry) SyncPlatform(ctx context.Context, userID, connectionID int64, platform model.Platform) error {
	adapter, err := r.Adapter(platform)
	if err != nil {
		return err
	}
	return adapter.SyncData(ctx, userID, connectionID)
}

func (r *integrationRegistry) FetchUserData(ctx context.Context, conn *model.PlatformConnection) (*model.PlatformUser, error) {
	adapter, err := r.Adapter(conn.Platform)
	if err != nil {
		return nil, err
	}
	return adapter.FetchUserData(ctx, conn)
}

// SyncAllDirect fans out over the user's active connections. One
// platform failing never stops the others; each outcome is reported
// individually.
func (r *integrationRegistry) SyncAllDirect(ctx context.Context, userID int64) ([]dto.SyncOutcome, error) {
	connections, err := r.connections.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]dto.SyncOutcome, len(connections))
	g, gctx := errgroup.WithContext(ctx)
	for i, conn := range connections {
		i, conn := i, conn
		g.Go(func() error {
			outcome := dto.SyncOutcome{Platform: conn.Platform, ConnectionID: conn.ID}
			if err := r.SyncPlatform(gctx, userID, conn.ID, conn.Platform); err != nil {
				outcome.Error = err.Error()
				logger.GetLogger().
					WithField("platform", conn.Platform).
					WithField("error", err).
					Error("Error while syncing platform")
			} else {
				outcome.Enqueued = true
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Platform < outcomes[j].Platform })
	return outcomes, nil
}
