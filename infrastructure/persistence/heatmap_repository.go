package persistence

import (
	"context"
	"database/sql"
	"time"

	"dev-pulse/domain/model"
)

// HeatmapRepository persists the per (user, date) activity rollup.
type HeatmapRepository struct {
	db *sql.DB
}

func NewHeatmapRepository(db *sql.DB) *HeatmapRepository { return &HeatmapRepository{db: db} }

// Upsert recomputes last-writer-wins on the (user_id, date) key. The
// natural-key conflict resolution is what keeps concurrent recalculation
// for the same day safe without explicit locking.
func (r *HeatmapRepository) Upsert(ctx context.Context, entry *model.ActivityHeatmapEntry) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO activity_heatmap (user_id, date, commits, problems_solved,
            tasks_completed, calendar_events, total_activities, activity_score, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
        ON CONFLICT (user_id, date) DO UPDATE SET
            commits = EXCLUDED.commits,
            problems_solved = EXCLUDED.problems_solved,
            tasks_completed = EXCLUDED.tasks_completed,
            calendar_events = EXCLUDED.calendar_events,
            total_activities = EXCLUDED.total_activities,
            activity_score = EXCLUDED.activity_score,
            updated_at = EXCLUDED.updated_at`,
		entry.UserID, entry.Date, entry.Commits, entry.ProblemsSolved,
		entry.TasksCompleted, entry.CalendarEvents, entry.TotalActivities, entry.ActivityScore, now)
	return err
}

func (r *HeatmapRepository) GetRange(ctx context.Context, userID int64, from, to time.Time) ([]model.ActivityHeatmapEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, user_id, date, commits, problems_solved, tasks_completed,
            calendar_events, total_activities, activity_score, created_at, updated_at
        FROM activity_heatmap
        WHERE user_id=$1 AND date >= $2 AND date <= $3
        ORDER BY date`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []model.ActivityHeatmapEntry
	for rows.Next() {
		var e model.ActivityHeatmapEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Commits, &e.ProblemsSolved,
			&e.TasksCompleted, &e.CalendarEvents, &e.TotalActivities, &e.ActivityScore,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// ActiveDatesDesc feeds the streak calculator: days with any activity,
// newest first.
func (r *HeatmapRepository) ActiveDatesDesc(ctx context.Context, userID int64) ([]time.Time, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT date FROM activity_heatmap
        WHERE user_id=$1 AND total_activities > 0
        ORDER BY date DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
