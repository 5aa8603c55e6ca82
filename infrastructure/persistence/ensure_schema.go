package persistence

import (
	"database/sql"
	"fmt"

	"dev-pulse/infrastructure/logger"
)

// EnsureSchema creates the core tables if they do not exist. Safe to call
// at startup.
func EnsureSchema(db *sql.DB) error {
	ddls := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            user_name TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            total_points BIGINT NOT NULL DEFAULT 0,
            current_streak INT NOT NULL DEFAULT 0,
            longest_streak INT NOT NULL DEFAULT 0,
            last_activity_date DATE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE TABLE IF NOT EXISTS platform_connections (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL REFERENCES users(id),
            platform TEXT NOT NULL,
            external_username TEXT NOT NULL,
            credential TEXT NOT NULL DEFAULT '',
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            sync_status TEXT NOT NULL DEFAULT 'PENDING',
            last_synced TIMESTAMPTZ,
            metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		// One active connection per (user, platform, external account);
		// inactive rows may pile up for history.
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_connections_active
            ON platform_connections(user_id, platform, external_username)
            WHERE is_active`,
		`CREATE TABLE IF NOT EXISTS platform_stats (
            id BIGSERIAL PRIMARY KEY,
            connection_id BIGINT NOT NULL REFERENCES platform_connections(id),
            user_id BIGINT NOT NULL,
            platform TEXT NOT NULL,
            date DATE NOT NULL,
            commits INT NOT NULL DEFAULT 0,
            pull_requests INT NOT NULL DEFAULT 0,
            issues INT NOT NULL DEFAULT 0,
            reviews INT NOT NULL DEFAULT 0,
            easy_solved INT NOT NULL DEFAULT 0,
            medium_solved INT NOT NULL DEFAULT 0,
            hard_solved INT NOT NULL DEFAULT 0,
            contests INT NOT NULL DEFAULT 0,
            rating INT NOT NULL DEFAULT 0,
            tasks_completed INT NOT NULL DEFAULT 0,
            events_attended INT NOT NULL DEFAULT 0,
            raw_detail JSONB,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE (connection_id, date)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_platform_stats_user_date ON platform_stats(user_id, date)`,
		`CREATE TABLE IF NOT EXISTS activity_heatmap (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            date DATE NOT NULL,
            commits INT NOT NULL DEFAULT 0,
            problems_solved INT NOT NULL DEFAULT 0,
            tasks_completed INT NOT NULL DEFAULT 0,
            calendar_events INT NOT NULL DEFAULT 0,
            total_activities INT NOT NULL DEFAULT 0,
            activity_score INT NOT NULL DEFAULT 0,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            UNIQUE (user_id, date)
        )`,
		`CREATE TABLE IF NOT EXISTS leaderboard_entries (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            user_name TEXT NOT NULL DEFAULT '',
            period TEXT NOT NULL,
            platform TEXT,
            rank INT NOT NULL,
            score BIGINT NOT NULL,
            current_streak INT NOT NULL DEFAULT 0,
            commits INT NOT NULL DEFAULT 0,
            problems_solved INT NOT NULL DEFAULT 0,
            tasks_completed INT NOT NULL DEFAULT 0,
            missions_completed INT NOT NULL DEFAULT 0,
            calculated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_period_calc
            ON leaderboard_entries(period, calculated_at DESC)`,
		`CREATE TABLE IF NOT EXISTS sync_jobs (
            id BIGSERIAL PRIMARY KEY,
            job_key TEXT NOT NULL,
            user_id BIGINT NOT NULL,
            connection_id BIGINT NOT NULL,
            platform TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'PENDING',
            attempts INT NOT NULL DEFAULT 0,
            last_error TEXT,
            started_at TIMESTAMPTZ,
            finished_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`,
		`CREATE INDEX IF NOT EXISTS idx_sync_jobs_user ON sync_jobs(user_id, created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS missions (
            id BIGSERIAL PRIMARY KEY,
            code TEXT NOT NULL UNIQUE,
            title TEXT NOT NULL,
            description TEXT,
            points INT NOT NULL DEFAULT 0,
            is_active BOOLEAN NOT NULL DEFAULT TRUE
        )`,
		`CREATE TABLE IF NOT EXISTS user_missions (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            mission_id BIGINT NOT NULL REFERENCES missions(id),
            progress INT NOT NULL DEFAULT 0,
            completed BOOLEAN NOT NULL DEFAULT FALSE,
            completed_at TIMESTAMPTZ,
            UNIQUE (user_id, mission_id)
        )`,
	}

	for _, ddl := range ddls {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	logger.GetLogger().Info("Schema ensured")
	return nil
}
