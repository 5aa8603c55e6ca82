package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/model"
)

// ConnectionRepositoryMSSQL is the SQL Server variant used in production.
// Metadata is stored as a JSON string; the failed-sync error message is
// merged in Go since SQL Server lacks jsonb_set.
type ConnectionRepositoryMSSQL struct {
	db *sql.DB
}

func NewConnectionRepositoryMSSQL(db *sql.DB) *ConnectionRepositoryMSSQL {
	return &ConnectionRepositoryMSSQL{db: db}
}

func (r *ConnectionRepositoryMSSQL) Create(ctx context.Context, conn *model.PlatformConnection) (int64, error) {
	now := time.Now().UTC()
	meta := []byte(`{}`)
	if conn.Metadata != nil {
		var err error
		meta, err = json.Marshal(conn.Metadata)
		if err != nil {
			return 0, err
		}
	}
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO platform_connections (user_id, platform, external_username, credential, is_active, sync_status, metadata, created_at, updated_at)
         OUTPUT INSERTED.id
         VALUES (@p1,@p2,@p3,@p4,1,@p5,@p6,@p7,@p7)`,
		conn.UserID, string(conn.Platform), conn.ExternalUsername, conn.Credential,
		string(model.SyncStatusPending), string(meta), now).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ConnectionRepositoryMSSQL) GetByID(ctx context.Context, id int64) (*model.PlatformConnection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM platform_connections WHERE id=@p1`, id)
	conn, err := scanConnection(row)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound(fmt.Sprintf("connection %d not found", id), err)
	}
	return conn, err
}

func (r *ConnectionRepositoryMSSQL) GetActiveByUser(ctx context.Context, userID int64) ([]*model.PlatformConnection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+connectionColumns+` FROM platform_connections WHERE user_id=@p1 AND is_active=1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConnections(rows)
}

func (r *ConnectionRepositoryMSSQL) GetActiveByUserAndPlatform(ctx context.Context, userID int64, platform model.Platform) (*model.PlatformConnection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM platform_connections WHERE user_id=@p1 AND platform=@p2 AND is_active=1`,
		userID, string(platform))
	conn, err := scanConnection(row)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound(fmt.Sprintf("no active %s connection for user %d", platform, userID), err)
	}
	return conn, err
}

func (r *ConnectionRepositoryMSSQL) ListActive(ctx context.Context) ([]*model.PlatformConnection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+connectionColumns+` FROM platform_connections WHERE is_active=1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConnections(rows)
}

func (r *ConnectionRepositoryMSSQL) SetSyncStatus(ctx context.Context, id int64, status model.SyncStatus, errorMessage *string) error {
	if !status.Valid() {
		return apperror.Validation(fmt.Sprintf("invalid sync status %q", status), nil)
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

	var current model.SyncStatus
	var metaRaw string
	err = tx.QueryRowContext(ctx,
		`SELECT sync_status, metadata FROM platform_connections WITH (UPDLOCK, ROWLOCK) WHERE id=@p1`, id).
		Scan(&current, &metaRaw)
	if err == sql.ErrNoRows {
		err = apperror.NotFound(fmt.Sprintf("connection %d not found", id), err)
		return err
	}
	if err != nil {
		return err
	}
	if !current.CanTransition(status) {
		err = apperror.Validation(fmt.Sprintf("illegal sync status transition %s -> %s", current, status), nil)
		return err
	}

	meta := map[string]string{}
	if metaRaw != "" {
		_ = json.Unmarshal([]byte(metaRaw), &meta)
	}
	now := time.Now().UTC()
	switch status {
	case model.SyncStatusCompleted:
		delete(meta, "last_error")
		var metaOut []byte
		metaOut, err = json.Marshal(meta)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE platform_connections SET sync_status=@p2, last_synced=@p3, metadata=@p4, updated_at=@p3 WHERE id=@p1`,
			id, string(status), now, string(metaOut))
	case model.SyncStatusFailed:
		if errorMessage != nil {
			meta["last_error"] = *errorMessage
		}
		var metaOut []byte
		metaOut, err = json.Marshal(meta)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE platform_connections SET sync_status=@p2, metadata=@p3, updated_at=@p4 WHERE id=@p1`,
			id, string(status), string(metaOut), now)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE platform_connections SET sync_status=@p2, updated_at=@p3 WHERE id=@p1`,
			id, string(status), now)
	}
	if err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

func (r *ConnectionRepositoryMSSQL) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE platform_connections SET is_active=0, updated_at=@p2 WHERE id=@p1`, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound(fmt.Sprintf("connection %d not found", id), nil)
	}
	return nil
}
