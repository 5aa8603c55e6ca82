package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/dto"
	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/infrastructure/utils"
)

// IConnectionScheduler is the recurring-sync registration surface the
// sync usecase drives. May be nil when the scheduler is disabled.
type IConnectionScheduler interface {
	RegisterConnection(conn *model.PlatformConnection) error
	CancelConnection(connectionID int64)
}

type ISyncUsecase interface {
	Connect(ctx context.Context, userID int64, req dto.ReqConnectPlatform) (*model.PlatformConnection, error)
	Disconnect(ctx context.Context, userID int64, platform string) error
	TriggerSync(ctx context.Context, userID int64, platform string) (*dto.SyncOutcome, error)
	TriggerSyncAll(ctx context.Context, userID int64) ([]dto.SyncOutcome, error)
	GetSyncStatus(ctx context.Context, userID int64) ([]dto.SyncStatusItem, error)
	GetSyncHistory(ctx context.Context, userID int64, limit int) ([]model.SyncJob, error)
	// EnqueueSync is the shared enqueue path for manual triggers and
	// the scheduler. Returns the audit row id.
	EnqueueSync(ctx context.Context, conn *model.PlatformConnection) (int64, error)
	SetScheduler(scheduler IConnectionScheduler)
}

type syncUsecase struct {
	connections repository.IConnection
	syncJobs    repository.ISyncJob
	queue       repository.IJobQueue
	vault       repository.ICredentialVault
	registry    IIntegrationRegistry
	scheduler   IConnectionScheduler

	dedupBucket time.Duration
	maxAttempts int
}

func NewSyncUsecase(
	connections repository.IConnection,
	syncJobs repository.ISyncJob,
	queue repository.IJobQueue,
	vault repository.ICredentialVault,
	registry IIntegrationRegistry,
	dedupBucket time.Duration,
	maxAttempts int,
) ISyncUsecase {
	return &syncUsecase{
		connections: connections,
		syncJobs:    syncJobs,
		queue:       queue,
		vault:       vault,
		registry:    registry,
		dedupBucket: dedupBucket,
		maxAttempts: maxAttempts,
	}
}

func (u *syncUsecase) SetScheduler(scheduler IConnectionScheduler) {
	u.scheduler = scheduler
}

// Connect verifies the external account, seals the credential and
// persists the link. The first sync is enqueued immediately.
func (u *syncUsecase) Connect(ctx context.Context, userID int64, req dto.ReqConnectPlatform) (*model.PlatformConnection, error) {
	platform := model.Platform(strings.ToLower(req.Platform))
	if !platform.Valid() {
		return nil, apperror.Validation("unknown platform: "+req.Platform, nil)
	}
	if req.ExternalUsername == "" {
		return nil, apperror.Validation("external_username is required", nil)
	}
	if existing, err := u.connections.GetActiveByUserAndPlatform(ctx, userID, platform); err == nil && existing != nil {
		if existing.ExternalUsername == req.ExternalUsername {
			return nil, apperror.Validation("platform is already connected", nil)
		}
	}

	sealed := ""
	if req.Credential != "" {
		var err error
		sealed, err = u.vault.Seal(req.Credential)
		if err != nil {
			return nil, apperror.Internal("sealing credential", err)
		}
	}

	conn := &model.PlatformConnection{
		UserID:           userID,
		Platform:         platform,
		ExternalUsername: req.ExternalUsername,
		Credential:       sealed,
		IsActive:         true,
		SyncStatus:       model.SyncStatusPending,
		Metadata:         map[string]string{},
	}
	if req.Schedule != "" {
		conn.Metadata["sync_cron"] = req.Schedule
	}

	identity, err := u.registry.FetchUserData(ctx, conn)
	if err != nil {
		return nil, err
	}
	conn.Metadata["external_id"] = identity.ExternalID
	if identity.DisplayName != "" {
		conn.Metadata["display_name"] = identity.DisplayName
	}

	id, err := u.connections.Create(ctx, conn)
	if err != nil {
		return nil, err
	}
	conn.ID = id

	if u.scheduler != nil {
		if err := u.scheduler.RegisterConnection(conn); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while registering connection schedule")
		}
	}
	if _, err := u.EnqueueSync(ctx, conn); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while enqueueing initial sync")
	}
	return conn, nil
}

// Disconnect deactivates the link. History rows stay; any sync result
// still in flight is discarded on write.
func (u *syncUsecase) Disconnect(ctx context.Context, userID int64, platform string) error {
	p := model.Platform(strings.ToLower(platform))
	if !p.Valid() {
		return apperror.Validation("unknown platform: "+platform, nil)
	}
	conn, err := u.connections.GetActiveByUserAndPlatform(ctx, userID, p)
	if err != nil {
		return err
	}
	if err := u.connections.Deactivate(ctx, conn.ID); err != nil {
		return err
	}
	if u.scheduler != nil {
		u.scheduler.CancelConnection(conn.ID)
	}
	return nil
}

func (u *syncUsecase) TriggerSync(ctx context.Context, userID int64, platform string) (*dto.SyncOutcome, error) {
	p := model.Platform(strings.ToLower(platform))
	if !p.Valid() {
		return nil, apperror.Validation("unknown platform: "+platform, nil)
	}
	conn, err := u.connections.GetActiveByUserAndPlatform(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	outcome := &dto.SyncOutcome{Platform: p, ConnectionID: conn.ID}
	if _, err := u.EnqueueSync(ctx, conn); err != nil {
		if apperror.KindOf(err) == apperror.KindValidation {
			outcome.Error = err.Error()
			return outcome, nil
		}
		return nil, err
	}
	outcome.Enqueued = true
	return outcome, nil
}

// TriggerSyncAll enqueues one sync per active connection in parallel.
// Per-platform failures land in the outcome list instead of aborting
// the fan-out.
func (u *syncUsecase) TriggerSyncAll(ctx context.Context, userID int64) ([]dto.SyncOutcome, error) {
	connections, err := u.connections.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]dto.SyncOutcome, len(connections))
	g, gctx := errgroup.WithContext(ctx)
	for i, conn := range connections {
		i, conn := i, conn
		g.Go(func() error {
			outcome := dto.SyncOutcome{Platform: conn.Platform, ConnectionID: conn.ID}
			if _, err := u.EnqueueSync(gctx, conn); err != nil {
				outcome.Error = err.Error()
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

func (u *syncUsecase) EnqueueSync(ctx context.Context, conn *model.PlatformConnection) (int64, error) {
	now := utils.GetCurrentTime()
	key := model.SyncJobKey(conn.Platform, conn.ID, now, u.dedupBucket)

	audit := &model.SyncJob{
		JobKey:       key,
		UserID:       conn.UserID,
		ConnectionID: conn.ID,
		Platform:     conn.Platform,
		Status:       model.SyncJobPending,
	}
	auditID, err := u.syncJobs.Create(ctx, audit)
	if err != nil {
		return 0, err
	}

	job := &model.QueueJob{
		Lane:         model.LaneSync,
		Key:          key,
		UserID:       conn.UserID,
		ConnectionID: conn.ID,
		Platform:     conn.Platform,
		MaxAttempts:  u.maxAttempts,
		SyncJobID:    auditID,
		EnqueuedAt:   now,
	}
	enqueued, err := u.queue.Enqueue(ctx, job)
	if err != nil {
		return auditID, err
	}
	if !enqueued {
		// A sync for this connection is already queued in the same
		// window; the duplicate trigger coalesces into it.
		if err := u.syncJobs.MarkFailed(ctx, auditID, "coalesced with an already queued sync"); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing duplicate sync job")
		}
		return auditID, apperror.Validation("a sync for this connection is already queued", nil)
	}

	// Re-arm the state machine for the new run.
	if conn.SyncStatus == model.SyncStatusCompleted || conn.SyncStatus == model.SyncStatusFailed {
		if err := u.connections.SetSyncStatus(ctx, conn.ID, model.SyncStatusPending, nil); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while resetting sync status")
		}
	}
	return auditID, nil
}

func (u *syncUsecase) GetSyncStatus(ctx context.Context, userID int64) ([]dto.SyncStatusItem, error) {
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
	return items, nil
}

func (u *syncUsecase) GetSyncHistory(ctx context.Context, userID int64, limit int) ([]model.SyncJob, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return u.syncJobs.ListByUser(ctx, userID, limit)
}
