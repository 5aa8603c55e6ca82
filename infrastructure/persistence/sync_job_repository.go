package persistence

import (
	"context"
	"database/sql"
	"time"

	"dev-pulse/domain/model"
)

// SyncJobRepository is the historical log of sync attempts.
type SyncJobRepository struct {
	db *sql.DB
}

func NewSyncJobRepository(db *sql.DB) *SyncJobRepository { return &SyncJobRepository{db: db} }

func (r *SyncJobRepository) Create(ctx context.Context, job *model.SyncJob) (int64, error) {
	now := time.Now().UTC()
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO sync_jobs (job_key, user_id, connection_id, platform, status, attempts, created_at, updated_at)
         VALUES ($1,$2,$3,$4,$5,0,$6,$6)
         RETURNING id`,
		job.JobKey, job.UserID, job.ConnectionID, job.Platform, model.SyncJobPending, now).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *SyncJobRepository) MarkProcessing(ctx context.Context, id int64, attempt int) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE sync_jobs SET status=$2, attempts=$3, started_at=COALESCE(started_at,$4), updated_at=$4 WHERE id=$1`,
		id, model.SyncJobProcessing, attempt, now)
	return err
}

func (r *SyncJobRepository) MarkCompleted(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE sync_jobs SET status=$2, finished_at=$3, last_error=NULL, updated_at=$3 WHERE id=$1`,
		id, model.SyncJobCompleted, now)
	return err
}

func (r *SyncJobRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`UPDATE sync_jobs SET status=$2, last_error=$3, finished_at=$4, updated_at=$4 WHERE id=$1`,
		id, model.SyncJobFailed, errorMessage, now)
	return err
}

func (r *SyncJobRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.SyncJob, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, job_key, user_id, connection_id, platform, status, attempts, last_error,
            started_at, finished_at, created_at, updated_at
         FROM sync_jobs WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []model.SyncJob
	for rows.Next() {
		var j model.SyncJob
		var lastErr sql.NullString
		var started, finished sql.NullTime
		if err := rows.Scan(&j.ID, &j.JobKey, &j.UserID, &j.ConnectionID, &j.Platform, &j.Status,
			&j.Attempts, &lastErr, &started, &finished, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		if lastErr.Valid {
			j.LastError = &lastErr.String
		}
		if started.Valid {
			t := started.Time
			j.StartedAt = &t
		}
		if finished.Valid {
			t := finished.Time
			j.FinishedAt = &t
		}
		list = append(list, j)
	}
	return list, rows.Err()
}
