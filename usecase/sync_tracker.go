package usecase

import (
	"context"

	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/events"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/infrastructure/utils"
)

// SyncTracker drives the per-connection sync state machine from the
// worker. It also emits the sync-completed event once a run reaches a
// terminal state.
type SyncTracker struct {
	connections repository.IConnection
	publisher   events.ISyncEventPublisher // may be nil
}

func NewSyncTracker(connections repository.IConnection, publisher events.ISyncEventPublisher) *SyncTracker {
	return &SyncTracker{connections: connections, publisher: publisher}
}

// Begin moves the connection to SYNCING. A connection resting in a
// terminal state is re-armed through PENDING first so no transition is
// skipped.
func (t *SyncTracker) Begin(ctx context.Context, connectionID int64) error {
	conn, err := t.connections.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	if conn.SyncStatus == model.SyncStatusCompleted || conn.SyncStatus == model.SyncStatusFailed {
		if err := t.connections.SetSyncStatus(ctx, connectionID, model.SyncStatusPending, nil); err != nil {
			return err
		}
	}
	return t.connections.SetSyncStatus(ctx, connectionID, model.SyncStatusSyncing, nil)
}

func (t *SyncTracker) Complete(ctx context.Context, connectionID int64) error {
	if err := t.connections.SetSyncStatus(ctx, connectionID, model.SyncStatusCompleted, nil); err != nil {
		return err
	}
	t.publish(ctx, connectionID, true, "")
	return nil
}

func (t *SyncTracker) Fail(ctx context.Context, connectionID int64, message string) error {
	msg := utils.Truncate(message, 500)
	if err := t.connections.SetSyncStatus(ctx, connectionID, model.SyncStatusFailed, &msg); err != nil {
		return err
	}
	t.publish(ctx, connectionID, false, msg)
	return nil
}

func (t *SyncTracker) publish(ctx context.Context, connectionID int64, success bool, message string) {
	if t.publisher == nil {
		return
	}
	conn, err := t.connections.GetByID(ctx, connectionID)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while loading connection for event")
		return
	}
	t.publisher.PublishSyncCompleted(ctx, &events.SyncCompletedEvent{
		UserID:       conn.UserID,
		ConnectionID: conn.ID,
		Platform:     conn.Platform,
		Success:      success,
		Error:        message,
		OccurredAt:   utils.GetCurrentTime(),
	})
}
