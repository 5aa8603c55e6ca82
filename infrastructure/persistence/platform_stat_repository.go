package persistence

import (
	"context"
	"database/sql"
	"time"

	"dev-pulse/domain/model"
	"dev-pulse/infrastructure/logger"
)

// PlatformStatRepository persists per-connection daily stat snapshots.
type PlatformStatRepository struct {
	db *sql.DB
}

func NewPlatformStatRepository(db *sql.DB) *PlatformStatRepository {
	return &PlatformStatRepository{db: db}
}

// Upsert writes the (connection_id, date) snapshot. The INSERT source is a
// SELECT over the owning connection filtered on is_active, so a late
// result for a disconnected connection is discarded instead of written.
func (r *PlatformStatRepository) Upsert(ctx context.Context, stat *model.PlatformStat) error {
	now := time.Now().UTC()
	var raw interface{}
	if len(stat.RawDetail) > 0 {
		raw = []byte(stat.RawDetail)
	}
	res, err := r.db.ExecContext(ctx, `
        INSERT INTO platform_stats (connection_id, user_id, platform, date,
            commits, pull_requests, issues, reviews,
            easy_solved, medium_solved, hard_solved, contests, rating,
            tasks_completed, events_attended, raw_detail, created_at, updated_at)
        SELECT c.id, c.user_id, c.platform, $2,
            $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15
        FROM platform_connections c
        WHERE c.id = $1 AND c.is_active
        ON CONFLICT (connection_id, date) DO UPDATE SET
            commits = EXCLUDED.commits,
            pull_requests = EXCLUDED.pull_requests,
            issues = EXCLUDED.issues,
            reviews = EXCLUDED.reviews,
            easy_solved = EXCLUDED.easy_solved,
            medium_solved = EXCLUDED.medium_solved,
            hard_solved = EXCLUDED.hard_solved,
            contests = EXCLUDED.contests,
            rating = EXCLUDED.rating,
            tasks_completed = EXCLUDED.tasks_completed,
            events_attended = EXCLUDED.events_attended,
            raw_detail = EXCLUDED.raw_detail,
            updated_at = EXCLUDED.updated_at`,
		stat.ConnectionID, stat.Date, stat.Commits, stat.PullRequests, stat.Issues, stat.Reviews,
		stat.EasySolved, stat.MediumSolved, stat.HardSolved, stat.Contests, stat.Rating,
		stat.TasksCompleted, stat.EventsAttended, raw, now)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		logger.GetLogger().
			WithField("connectionId", stat.ConnectionID).
			Info("Stat write discarded for inactive connection")
	}
	return nil
}

func (r *PlatformStatRepository) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*model.PlatformStat, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, connection_id, user_id, platform, date,
            commits, pull_requests, issues, reviews,
            easy_solved, medium_solved, hard_solved, contests, rating,
            tasks_completed, events_attended, raw_detail, created_at, updated_at
        FROM platform_stats WHERE user_id=$1 AND date=$2`, userID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*model.PlatformStat
	for rows.Next() {
		s := &model.PlatformStat{}
		var raw []byte
		if err := rows.Scan(&s.ID, &s.ConnectionID, &s.UserID, &s.Platform, &s.Date,
			&s.Commits, &s.PullRequests, &s.Issues, &s.Reviews,
			&s.EasySolved, &s.MediumSolved, &s.HardSolved, &s.Contests, &s.Rating,
			&s.TasksCompleted, &s.EventsAttended, &raw, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		s.RawDetail = raw
		list = append(list, s)
	}
	return list, rows.Err()
}

// Totals aggregates counters for a user from `since` onward. Zero time
// means lifetime; a nil platform covers all platforms.
func (r *PlatformStatRepository) Totals(ctx context.Context, userID int64, since time.Time, platform *model.Platform) (model.StatTotals, error) {
	q := `
        SELECT COALESCE(SUM(commits),0), COALESCE(SUM(pull_requests),0), COALESCE(SUM(issues),0),
            COALESCE(SUM(reviews),0), COALESCE(SUM(easy_solved),0), COALESCE(SUM(medium_solved),0),
            COALESCE(SUM(hard_solved),0), COALESCE(SUM(tasks_completed),0), COALESCE(SUM(events_attended),0)
        FROM platform_stats WHERE user_id=$1 AND date >= $2`
	args := []interface{}{userID, since}
	if platform != nil {
		q += ` AND platform=$3`
		args = append(args, *platform)
	}
	var t model.StatTotals
	err := r.db.QueryRowContext(ctx, q, args...).Scan(
		&t.Commits, &t.PullRequests, &t.Issues, &t.Reviews,
		&t.EasySolved, &t.MediumSolved, &t.HardSolved, &t.TasksCompleted, &t.EventsAttended)
	return t, err
}
