package repository

import (
	"context"
	"time"

	"dev-pulse/domain/model"
)

// IJobQueue is the durable work queue backing the sync pipeline. The store
// must survive process restarts; in-flight jobs are re-delivered rather
// than silently lost.
type IJobQueue interface {
	// Enqueue adds the job unless an entry with the same key is already
	// pending or running. Returns false when deduplicated away.
	Enqueue(ctx context.Context, job *model.QueueJob) (bool, error)
	// Dequeue blocks up to `wait` for the next ready job on the lane.
	// Returns nil when nothing became ready.
	Dequeue(ctx context.Context, lane model.Lane, wait time.Duration) (*model.QueueJob, error)
	// Complete records success and releases the dedup key.
	Complete(ctx context.Context, job *model.QueueJob) error
	// Fail records the error. When the job has attempts left and the
	// error is retryable it is re-scheduled with exponential backoff;
	// the returned flag says whether a retry was scheduled.
	Fail(ctx context.Context, job *model.QueueJob, cause error, retryable bool) (bool, error)
	// PromoteDue moves backoff-delayed jobs whose time has come back to
	// the ready list. Called periodically by the worker loop.
	PromoteDue(ctx context.Context, lane model.Lane) (int, error)
}
