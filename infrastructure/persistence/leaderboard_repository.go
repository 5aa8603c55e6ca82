package persistence

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"dev-pulse/domain/model"
)

// LeaderboardRepository stores ranking generations in PostgreSQL. Rows
// accumulate per calculation; readers fetch the newest generation only.
type LeaderboardRepository struct {
	db *sql.DB
}

func NewLeaderboardRepository(db *sql.DB) *LeaderboardRepository {
	return &LeaderboardRepository{db: db}
}

func (r *LeaderboardRepository) InsertGeneration(ctx context.Context, entries []model.LeaderboardEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	q := `INSERT INTO leaderboard_entries (user_id, user_name, period, platform, rank, score,
            current_streak, commits, problems_solved, tasks_completed, missions_completed, calculated_at)
          VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	for _, e := range entries {
		var platform interface{}
		if e.Platform != nil {
			platform = string(*e.Platform)
		}
		if _, err = tx.ExecContext(ctx, q, e.UserID, e.UserName, e.Period, platform, e.Rank, e.Score,
			e.CurrentStreak, e.Commits, e.ProblemsSolved, e.TasksCompleted, e.MissionsCompleted, e.CalculatedAt); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

func (r *LeaderboardRepository) LatestGeneration(ctx context.Context, period model.Period, platform *model.Platform, limit int) ([]model.LeaderboardEntry, time.Time, error) {
	var calcAt sql.NullTime
	var err error
	if platform == nil {
		err = r.db.QueryRowContext(ctx,
			`SELECT MAX(calculated_at) FROM leaderboard_entries WHERE period=$1 AND platform IS NULL`, period).Scan(&calcAt)
	} else {
		err = r.db.QueryRowContext(ctx,
			`SELECT MAX(calculated_at) FROM leaderboard_entries WHERE period=$1 AND platform=$2`, period, *platform).Scan(&calcAt)
	}
	if err != nil && err != sql.ErrNoRows {
		return nil, time.Time{}, err
	}
	if !calcAt.Valid {
		return nil, time.Time{}, nil
	}

	q := `SELECT id, user_id, user_name, period, platform, rank, score, current_streak,
            commits, problems_solved, tasks_completed, missions_completed, calculated_at
          FROM leaderboard_entries
          WHERE period=$1 AND calculated_at=$2 AND `
	args := []interface{}{period, calcAt.Time}
	if platform == nil {
		q += `platform IS NULL`
	} else {
		q += `platform=$3`
		args = append(args, *platform)
	}
	q += ` ORDER BY rank`
	if limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, time.Time{}, err
	}
	defer rows.Close()
	var list []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		var p sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.Period, &p, &e.Rank, &e.Score,
			&e.CurrentStreak, &e.Commits, &e.ProblemsSolved, &e.TasksCompleted,
			&e.MissionsCompleted, &e.CalculatedAt); err != nil {
			return nil, time.Time{}, err
		}
		if p.Valid {
			pl := model.Platform(p.String)
			e.Platform = &pl
		}
		list = append(list, e)
	}
	return list, calcAt.Time, rows.Err()
}
