package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"dev-pulse/domain/model"
	"dev-pulse/infrastructure/logger"
	"dev-pulse/infrastructure/utils"
)

// Options parameterize retry and retention behavior.
type Options struct {
	MaxAttempts    int
	BackoffBase    time.Duration
	BackoffCap     time.Duration
	RetentionCount int
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BackoffBase <= 0 {
		o.BackoffBase = 30 * time.Second
	}
	if o.BackoffCap <= 0 {
		o.BackoffCap = time.Hour
	}
	if o.RetentionCount <= 0 {
		o.RetentionCount = 500
	}
	return o
}

// RedisQueue is the durable two-lane job queue. Layout per lane:
//
//	queue:{lane}:ready      LIST  jobs ready to run
//	queue:{lane}:processing LIST  jobs claimed by a worker
//	queue:{lane}:delayed    ZSET  jobs waiting out a backoff, scored by ready time
//	queue:{lane}:done       LIST  bounded history of terminal jobs
//	queue:dedup:{key}       STRING dedup guard while a job is pending or running
//
// Everything lives in redis so queued and in-flight work survives process
// restarts; a stuck processing entry is re-delivered by ReclaimStale.
type RedisQueue struct {
	client *redis.Client
	opts   Options

	mu  sync.Mutex
	raw map[string]string // job id -> claimed payload, for LREM on settle
}

func NewRedisQueue(client *redis.Client, opts Options) *RedisQueue {
	return &RedisQueue{client: client, opts: opts.withDefaults(), raw: make(map[string]string)}
}

func readyKey(lane model.Lane) string      { return fmt.Sprintf("queue:%s:ready", lane) }
func processingKey(lane model.Lane) string { return fmt.Sprintf("queue:%s:processing", lane) }
func delayedKey(lane model.Lane) string    { return fmt.Sprintf("queue:%s:delayed", lane) }
func doneKey(lane model.Lane) string       { return fmt.Sprintf("queue:%s:done", lane) }
func dedupKey(jobKey string) string        { return fmt.Sprintf("queue:dedup:%s", jobKey) }

// dedupTTL bounds how long a dedup guard can outlive a crashed worker.
const dedupTTL = 24 * time.Hour

func (q *RedisQueue) Enqueue(ctx context.Context, job *model.QueueJob) (bool, error) {
	if !job.Lane.Valid() {
		return false, fmt.Errorf("invalid lane %q", job.Lane)
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.MaxAttempts <= 0 {
		job.MaxAttempts = q.opts.MaxAttempts
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = utils.GetCurrentTime()
	}

	if job.Key != "" {
		ok, err := q.client.SetNX(ctx, dedupKey(job.Key), job.ID, dedupTTL).Result()
		if err != nil {
			return false, err
		}
		if !ok {
			logger.GetLogger().WithField("jobKey", job.Key).Debug("Duplicate job coalesced")
			return false, nil
		}
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return false, err
	}
	if err := q.client.LPush(ctx, readyKey(job.Lane), payload).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, lane model.Lane, wait time.Duration) (*model.QueueJob, error) {
	raw, err := q.client.BLMove(ctx, readyKey(lane), processingKey(lane), "RIGHT", "LEFT", wait).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var job model.QueueJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		// Poison entry; drop it rather than wedging the lane.
		_ = q.client.LRem(ctx, processingKey(lane), 1, raw).Err()
		logger.GetLogger().WithField("error", err).Error("Dropping undecodable queue entry")
		return nil, nil
	}
	q.mu.Lock()
	q.raw[job.ID] = raw
	q.mu.Unlock()
	return &job, nil
}

func (q *RedisQueue) Complete(ctx context.Context, job *model.QueueJob) error {
	if err := q.settle(ctx, job, "COMPLETED", ""); err != nil {
		return err
	}
	if job.Key != "" {
		return q.client.Del(ctx, dedupKey(job.Key)).Err()
	}
	return nil
}

// Fail records the error and re-schedules with exponential backoff while
// attempts remain and the cause is retryable. The dedup guard is held
// through retries so duplicate triggers stay coalesced.
func (q *RedisQueue) Fail(ctx context.Context, job *model.QueueJob, cause error, retryable bool) (bool, error) {
	job.Attempts++
	if retryable && job.Attempts < job.MaxAttempts {
		if err := q.removeClaimed(ctx, job); err != nil {
			return false, err
		}
		payload, err := json.Marshal(job)
		if err != nil {
			return false, err
		}
		readyAt := utils.GetCurrentTime().Add(q.Backoff(job.Attempts))
		if err := q.client.ZAdd(ctx, delayedKey(job.Lane), redis.Z{
			Score:  float64(readyAt.Unix()),
			Member: payload,
		}).Err(); err != nil {
			return false, err
		}
		return true, nil
	}

	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if err := q.settle(ctx, job, "FAILED", msg); err != nil {
		return false, err
	}
	if job.Key != "" {
		if err := q.client.Del(ctx, dedupKey(job.Key)).Err(); err != nil {
			return false, err
		}
	}
	return false, nil
}

// PromoteDue moves delayed jobs whose backoff has elapsed back to ready.
func (q *RedisQueue) PromoteDue(ctx context.Context, lane model.Lane) (int, error) {
	now := utils.GetCurrentTime()
	members, err := q.client.ZRangeByScore(ctx, delayedKey(lane), &redis.ZRangeBy{
		Min: "-inf",
		Max: fmt.Sprintf("%d", now.Unix()),
	}).Result()
	if err != nil {
		return 0, err
	}
	promoted := 0
	for _, m := range members {
		removed, err := q.client.ZRem(ctx, delayedKey(lane), m).Result()
		if err != nil {
			return promoted, err
		}
		if removed == 0 {
			continue // another promoter got it first
		}
		if err := q.client.LPush(ctx, readyKey(lane), m).Err(); err != nil {
			return promoted, err
		}
		promoted++
	}
	return promoted, nil
}

// ReclaimStale pushes every claimed entry back to ready. Called once at
// startup so jobs orphaned by a crash are re-delivered.
func (q *RedisQueue) ReclaimStale(ctx context.Context, lane model.Lane) (int, error) {
	n := 0
	for {
		raw, err := q.client.LMove(ctx, processingKey(lane), readyKey(lane), "RIGHT", "LEFT").Result()
		if err == redis.Nil {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		_ = raw
		n++
	}
}

// Backoff returns the delay before the given retry attempt (1-based),
// doubling from the base up to the cap.
func (q *RedisQueue) Backoff(attempt int) time.Duration {
	d := q.opts.BackoffBase
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= q.opts.BackoffCap {
			return q.opts.BackoffCap
		}
	}
	if d > q.opts.BackoffCap {
		return q.opts.BackoffCap
	}
	return d
}

func (q *RedisQueue) settle(ctx context.Context, job *model.QueueJob, outcome, errMsg string) error {
	if err := q.removeClaimed(ctx, job); err != nil {
		return err
	}
	record := map[string]interface{}{
		"id":          job.ID,
		"lane":        job.Lane,
		"key":         job.Key,
		"outcome":     outcome,
		"attempts":    job.Attempts,
		"settled_at":  utils.GetCurrentTime(),
		"last_error":  errMsg,
		"user_id":     job.UserID,
		"platform":    job.Platform,
		"enqueued_at": job.EnqueuedAt,
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	pipe := q.client.TxPipeline()
	pipe.LPush(ctx, doneKey(job.Lane), payload)
	pipe.LTrim(ctx, doneKey(job.Lane), 0, int64(q.opts.RetentionCount-1))
	_, err = pipe.Exec(ctx)
	return err
}

func (q *RedisQueue) removeClaimed(ctx context.Context, job *model.QueueJob) error {
	q.mu.Lock()
	raw, ok := q.raw[job.ID]
	delete(q.raw, job.ID)
	q.mu.Unlock()
	if !ok {
		return nil
	}
	return q.client.LRem(ctx, processingKey(job.Lane), 1, raw).Err()
}
