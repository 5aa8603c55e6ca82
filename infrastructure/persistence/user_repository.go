package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/model"
)

// UserRepository persists user aggregates in PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository { return &UserRepository{db: db} }

const userColumns = `u.id, u.name, u.user_name, u.password, u.total_points, u.current_streak, u.longest_streak, u.last_activity_date, u.created_at, u.updated_at`

func (r *UserRepository) GetById(ctx context.Context, id int64) (model.User, error) {
	stmt, err := r.db.PrepareContext(ctx, `SELECT `+userColumns+`
	FROM users AS u
	WHERE u.id = $1`)
	if err != nil {
		return model.User{}, err
	}
	defer stmt.Close()
	return scanUser(stmt.QueryRowContext(ctx, id), fmt.Sprintf("user %d not found", id))
}

func (r *UserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	stmt, err := r.db.PrepareContext(ctx, `SELECT `+userColumns+`
	FROM users AS u
	WHERE u.user_name = $1`)
	if err != nil {
		return model.User{}, err
	}
	defer stmt.Close()
	return scanUser(stmt.QueryRowContext(ctx, userName), fmt.Sprintf("user %s not found", userName))
}

func (r *UserRepository) CreateUser(ctx context.Context, user model.User) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (name, user_name, password, created_at, updated_at) VALUES ($1,$2,$3,$4,$4)`,
		user.Name, user.UserName, user.Password, now)
	return err
}

func (r *UserRepository) UpdateTotalPoints(ctx context.Context, userID int64, totalPoints int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET total_points=$2, updated_at=$3 WHERE id=$1`,
		userID, totalPoints, time.Now().UTC())
	return err
}

func (r *UserRepository) UpdateStreak(ctx context.Context, userID int64, streak model.StreakState) error {
	var lastActivity interface{}
	if streak.LastActivityDate != nil {
		lastActivity = *streak.LastActivityDate
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET current_streak=$2, longest_streak=$3, last_activity_date=$4, updated_at=$5 WHERE id=$1`,
		userID, streak.CurrentStreak, streak.LongestStreak, lastActivity, time.Now().UTC())
	return err
}

// ActiveIDs returns candidate user ids for ranking: users holding at least
// one active connection, ascending, capped at limit.
func (r *UserRepository) ActiveIDs(ctx context.Context, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT DISTINCT u.id FROM users u
        JOIN platform_connections c ON c.user_id = u.id AND c.is_active
        ORDER BY u.id
        LIMIT $1`, limit)
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

func scanUser(row *sql.Row, notFoundMsg string) (model.User, error) {
	var u model.User
	var lastActivity sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.UserName, &u.Password, &u.TotalPoints,
		&u.CurrentStreak, &u.LongestStreak, &lastActivity, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, apperror.NotFound(notFoundMsg, err)
	}
	if err != nil {
		return model.User{}, err
	}
	if lastActivity.Valid {
		t := lastActivity.Time
		u.LastActivityDate = &t
	}
	return u, nil
}
