package persistence

import (
	"context"
	"database/sql"
	"time"

	"dev-pulse/domain/model"
)

// MissionRepository reads mission definitions and per-user completion
// state. The scoring core only ever reads from it.
type MissionRepository struct {
	db *sql.DB
}

func NewMissionRepository(db *sql.DB) *MissionRepository { return &MissionRepository{db: db} }

func (r *MissionRepository) CompletedPoints(ctx context.Context, userID int64, since time.Time) (int, int, error) {
	var points, count int
	err := r.db.QueryRowContext(ctx, `
        SELECT COALESCE(SUM(m.points),0), COUNT(*)
        FROM user_missions um
        JOIN missions m ON m.id = um.mission_id
        WHERE um.user_id=$1 AND um.completed AND m.is_active
          AND COALESCE(um.completed_at, 'epoch'::timestamptz) >= $2`,
		userID, since).Scan(&points, &count)
	return points, count, err
}

func (r *MissionRepository) ListByUser(ctx context.Context, userID int64) ([]model.UserMission, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, user_id, mission_id, progress, completed, completed_at
        FROM user_missions WHERE user_id=$1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []model.UserMission
	for rows.Next() {
		var um model.UserMission
		var completedAt sql.NullTime
		if err := rows.Scan(&um.ID, &um.UserID, &um.MissionID, &um.Progress, &um.Completed, &completedAt); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			t := completedAt.Time
			um.CompletedAt = &t
		}
		list = append(list, um)
	}
	return list, rows.Err()
}
