package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dev-pulse/domain/model"
)

// UserRepositoryMSSQL is the SQL Server variant used in production.
type UserRepositoryMSSQL struct {
	db *sql.DB
}

func NewUserRepositoryMSSQL(db *sql.DB) *UserRepositoryMSSQL { return &UserRepositoryMSSQL{db: db} }

func (r *UserRepositoryMSSQL) GetById(ctx context.Context, id int64) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+`
	FROM users AS u
	WHERE u.id = @p1`, id)
	return scanUser(row, fmt.Sprintf("user %d not found", id))
}

func (r *UserRepositoryMSSQL) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+`
	FROM users AS u
	WHERE u.user_name = @p1`, userName)
	return scanUser(row, fmt.Sprintf("user %s not found", userName))
}

func (r *UserRepositoryMSSQL) CreateUser(ctx context.Context, user model.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, user_name, password, created_at, updated_at) VALUES (@p1,@p2,@p3,@p4,@p4)`,
		user.Name, user.UserName, user.Password, now)
	return err
}

func (r *UserRepositoryMSSQL) UpdateTotalPoints(ctx context.Context, userID int64, totalPoints int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET total_points=@p2, updated_at=@p3 WHERE id=@p1`,
		userID, totalPoints, time.Now().UTC())
	return err
}

func (r *UserRepositoryMSSQL) UpdateStreak(ctx context.Context, userID int64, streak model.StreakState) error {
	var lastActivity interface{}
	if streak.LastActivityDate != nil {
		lastActivity = *streak.LastActivityDate
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET current_streak=@p2, longest_streak=@p3, last_activity_date=@p4, updated_at=@p5 WHERE id=@p1`,
		userID, streak.CurrentStreak, streak.LongestStreak, lastActivity, time.Now().UTC())
	return err
}

func (r *UserRepositoryMSSQL) ActiveIDs(ctx context.Context, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT DISTINCT TOP (@p1) u.id FROM users u
        JOIN platform_connections c ON c.user_id = u.id AND c.is_active = 1
        ORDER BY u.id`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
