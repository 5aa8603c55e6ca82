package queue

import (
	"context"
	"sync"
	"time"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/infrastructure/utils"
)

// ISyncExecutor runs one platform sync end to end. Implemented by the
// integration registry.
type ISyncExecutor interface {
	SyncPlatform(ctx context.Context, userID, connectionID int64, platform model.Platform) error
}

// IStatsRecalculator recomputes the aggregation projections for one
// (user, day). Must be idempotent.
type IStatsRecalculator interface {
	Recalculate(ctx context.Context, userID int64, day string) error
}

// ISyncTracker drives the per-connection sync state machine.
type ISyncTracker interface {
	Begin(ctx context.Context, connectionID int64) error
	Complete(ctx context.Context, connectionID int64) error
	Fail(ctx context.Context, connectionID int64, message string) error
}

// Worker pulls jobs from both lanes and executes them. It owns no retry
// loop of its own: a failed job is handed back to the queue so the
// queue's attempt accounting is the single source of truth.
type Worker struct {
	queue       repository.IJobQueue
	executor    ISyncExecutor
	recalc      IStatsRecalculator
	tracker     ISyncTracker
	syncJobs    repository.ISyncJob
	connections repository.IConnection

	poolSize        int
	dequeueWait     time.Duration
	promoteInterval time.Duration
}

func NewWorker(
	queue repository.IJobQueue,
	executor ISyncExecutor,
	recalc IStatsRecalculator,
	tracker ISyncTracker,
	syncJobs repository.ISyncJob,
	connections repository.IConnection,
	poolSize int,
	dequeueWait, promoteInterval time.Duration,
) *Worker {
	if poolSize <= 0 {
		poolSize = 4
	}
	if dequeueWait <= 0 {
		dequeueWait = 5 * time.Second
	}
	if promoteInterval <= 0 {
		promoteInterval = 15 * time.Second
	}
	return &Worker{
		queue:           queue,
		executor:        executor,
		recalc:          recalc,
		tracker:         tracker,
		syncJobs:        syncJobs,
		connections:     connections,
		poolSize:        poolSize,
		dequeueWait:     dequeueWait,
		promoteInterval: promoteInterval,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, lane := range []model.Lane{model.LaneSync, model.LaneRecalc} {
		for i := 0; i < w.poolSize; i++ {
			wg.Add(1)
			go func(lane model.Lane) {
				defer wg.Done()
				w.consume(ctx, lane)
			}(lane)
		}
		wg.Add(1)
		go func(lane model.Lane) {
			defer wg.Done()
			w.promote(ctx, lane)
		}(lane)
	}
	wg.Wait()
}

func (w *Worker) consume(ctx context.Context, lane model.Lane) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		job, err := w.queue.Dequeue(ctx, lane, w.dequeueWait)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.GetLogger().WithField("error", err).Error("Error while dequeuing job")
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		w.process(ctx, job)
	}
}

func (w *Worker) promote(ctx context.Context, lane model.Lane) {
	ticker := time.NewTicker(w.promoteInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := w.queue.PromoteDue(ctx, lane); err != nil {
				logger.GetLogger().WithField("error", err).Error("Error while promoting delayed jobs")
			} else if n > 0 {
				logger.GetLogger().WithField("count", n).Debug("Promoted delayed jobs")
			}
		}
	}
}

func (w *Worker) process(ctx context.Context, job *model.QueueJob) {
	switch job.Lane {
	case model.LaneSync:
		w.processSync(ctx, job)
	case model.LaneRecalc:
		w.processRecalc(ctx, job)
	}
}

func (w *Worker) processSync(ctx context.Context, job *model.QueueJob) {
	lg := logger.GetLogger().
		WithField("jobId", job.ID).
		WithField("platform", job.Platform).
		WithField("connectionId", job.ConnectionID)

	attempt := job.Attempts + 1
	if job.SyncJobID != 0 {
		if err := w.syncJobs.MarkProcessing(ctx, job.SyncJobID, attempt); err != nil {
			lg.WithField("error", err).Error("Error while marking sync job processing")
		}
	}
	if err := w.tracker.Begin(ctx, job.ConnectionID); err != nil {
		// A Validation error here means the connection is already
		// SYNCING under another job; this one coalesces into that run
		// instead of executing alongside it.
		if apperror.KindOf(err) == apperror.KindValidation {
			if job.SyncJobID != 0 {
				if err2 := w.syncJobs.MarkFailed(ctx, job.SyncJobID, "coalesced with a sync already in progress"); err2 != nil {
					lg.WithField("error", err2).Error("Error while closing coalesced sync job")
				}
			}
			if err2 := w.queue.Complete(ctx, job); err2 != nil {
				lg.WithField("error", err2).Error("Error while completing coalesced queue job")
			}
			lg.Info("Sync job coalesced into a run already in progress")
			return
		}
		lg.WithField("error", err).Error("Error while announcing sync start")
	}

	err := w.executor.SyncPlatform(ctx, job.UserID, job.ConnectionID, job.Platform)
	if err == nil {
		if job.SyncJobID != 0 {
			if err := w.syncJobs.MarkCompleted(ctx, job.SyncJobID); err != nil {
				lg.WithField("error", err).Error("Error while marking sync job completed")
			}
		}
		if err := w.tracker.Complete(ctx, job.ConnectionID); err != nil {
			lg.WithField("error", err).Error("Error while marking connection completed")
		}
		if err := w.queue.Complete(ctx, job); err != nil {
			lg.WithField("error", err).Error("Error while completing queue job")
		}
		w.enqueueRecalc(ctx, job.UserID)
		lg.Info("Sync job completed")
		return
	}

	msg := utils.Truncate(err.Error(), 500)
	if job.SyncJobID != 0 {
		if err2 := w.syncJobs.MarkFailed(ctx, job.SyncJobID, msg); err2 != nil {
			lg.WithField("error", err2).Error("Error while marking sync job failed")
		}
	}
	if err2 := w.tracker.Fail(ctx, job.ConnectionID, msg); err2 != nil {
		lg.WithField("error", err2).Error("Error while marking connection failed")
	}

	// An invalid credential is never retried; the connection stops being
	// scheduled until the user relinks it.
	if apperror.KindOf(err) == apperror.KindInvalidCredential {
		if err2 := w.connections.Deactivate(ctx, job.ConnectionID); err2 != nil {
			lg.WithField("error", err2).Error("Error while deactivating connection")
		} else {
			lg.Warn("Connection auto-deactivated after credential failure")
		}
	}

	retried, qErr := w.queue.Fail(ctx, job, err, apperror.IsRetryable(err))
	if qErr != nil {
		lg.WithField("error", qErr).Error("Error while failing queue job")
	}
	lg.WithField("error", err).WithField("retryScheduled", retried).Warn("Sync job failed")
}

func (w *Worker) processRecalc(ctx context.Context, job *model.QueueJob) {
	lg := logger.GetLogger().
		WithField("jobId", job.ID).
		WithField("userId", job.UserID).
		WithField("day", job.Date)

	err := w.recalc.Recalculate(ctx, job.UserID, job.Date)
	if err == nil {
		if err := w.queue.Complete(ctx, job); err != nil {
			lg.WithField("error", err).Error("Error while completing recalc job")
		}
		return
	}
	retried, qErr := w.queue.Fail(ctx, job, err, apperror.IsRetryable(err))
	if qErr != nil {
		lg.WithField("error", qErr).Error("Error while failing recalc job")
	}
	lg.WithField("error", err).WithField("retryScheduled", retried).Warn("Stats recalculation failed")
}

func (w *Worker) enqueueRecalc(ctx context.Context, userID int64) {
	day := utils.DayKey(utils.GetCurrentTime())
	job := &model.QueueJob{
		Lane:   model.LaneRecalc,
		Key:    model.RecalcJobKey(userID, day),
		UserID: userID,
		Date:   day,
	}
	if _, err := w.queue.Enqueue(ctx, job); err != nil {
		// Downstream aggregation is best-effort; the sync itself stands.
		logger.GetLogger().WithField("error", err).Error("Error while enqueueing stats recalculation")
	}
}
