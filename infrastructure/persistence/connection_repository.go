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

// ConnectionRepository persists platform connections in PostgreSQL.
type ConnectionRepository struct {
	db *sql.DB
}

func NewConnectionRepository(db *sql.DB) *ConnectionRepository { return &ConnectionRepository{db: db} }

const connectionColumns = `id, user_id, platform, external_username, credential, is_active, sync_status, last_synced, metadata, created_at, updated_at`

func (r *ConnectionRepository) Create(ctx context.Context, conn *model.PlatformConnection) (int64, error) {
	now := time.Now().UTC()
	meta, err := json.Marshal(conn.Metadata)
	if err != nil {
		return 0, err
	}
	if conn.Metadata == nil {
		meta = []byte(`{}`)
	}
	var id int64
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO platform_connections (user_id, platform, external_username, credential, is_active, sync_status, metadata, created_at, updated_at)
         VALUES ($1,$2,$3,$4,TRUE,$5,$6,$7,$7)
         RETURNING id`,
		conn.UserID, conn.Platform, conn.ExternalUsername, conn.Credential, model.SyncStatusPending, meta, now).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*model.PlatformConnection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM platform_connections WHERE id=$1`, id)
	conn, err := scanConnection(row)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound(fmt.Sprintf("connection %d not found", id), err)
	}
	return conn, err
}

func (r *ConnectionRepository) GetActiveByUser(ctx context.Context, userID int64) ([]*model.PlatformConnection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+connectionColumns+` FROM platform_connections WHERE user_id=$1 AND is_active ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConnections(rows)
}

func (r *ConnectionRepository) GetActiveByUserAndPlatform(ctx context.Context, userID int64, platform model.Platform) (*model.PlatformConnection, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+connectionColumns+` FROM platform_connections WHERE user_id=$1 AND platform=$2 AND is_active`, userID, platform)
	conn, err := scanConnection(row)
	if err == sql.ErrNoRows {
		return nil, apperror.NotFound(fmt.Sprintf("no active %s connection for user %d", platform, userID), err)
	}
	return conn, err
}

func (r *ConnectionRepository) ListActive(ctx context.Context) ([]*model.PlatformConnection, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+connectionColumns+` FROM platform_connections WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConnections(rows)
}

// SetSyncStatus is the sole mutation path for the sync state machine. The
// current status is read under lock so an illegal transition (PENDING
// straight to COMPLETED, say) can never be persisted. last_synced is
// stamped only on COMPLETED; on FAILED the message lands in metadata.
func (r *ConnectionRepository) SetSyncStatus(ctx context.Context, id int64, status model.SyncStatus, errorMessage *string) error {
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
	err = tx.QueryRowContext(ctx,
		`SELECT sync_status FROM platform_connections WHERE id=$1 FOR UPDATE`, id).Scan(&current)
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

	now := time.Now().UTC()
	switch status {
	case model.SyncStatusCompleted:
		_, err = tx.ExecContext(ctx,
			`UPDATE platform_connections
             SET sync_status=$2, last_synced=$3, metadata=metadata - 'last_error', updated_at=$3
             WHERE id=$1`, id, status, now)
	case model.SyncStatusFailed:
		msg := ""
		if errorMessage != nil {
			msg = *errorMessage
		}
		var metaVal []byte
		metaVal, err = json.Marshal(msg)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE platform_connections
             SET sync_status=$2, metadata=jsonb_set(metadata, '{last_error}', $3::jsonb), updated_at=$4
             WHERE id=$1`, id, status, metaVal, now)
	default:
		_, err = tx.ExecContext(ctx,
			`UPDATE platform_connections SET sync_status=$2, updated_at=$3 WHERE id=$1`, id, status, now)
	}
	if err != nil {
		return err
	}
	err = tx.Commit()
	return err
}

func (r *ConnectionRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE platform_connections SET is_active=FALSE, updated_at=$2 WHERE id=$1`, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NotFound(fmt.Sprintf("connection %d not found", id), nil)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConnection(row rowScanner) (*model.PlatformConnection, error) {
	conn := &model.PlatformConnection{}
	var lastSynced sql.NullTime
	var meta []byte
	if err := row.Scan(&conn.ID, &conn.UserID, &conn.Platform, &conn.ExternalUsername, &conn.Credential,
		&conn.IsActive, &conn.SyncStatus, &lastSynced, &meta, &conn.CreatedAt, &conn.UpdatedAt); err != nil {
		return nil, err
	}
	if lastSynced.Valid {
		t := lastSynced.Time
		conn.LastSynced = &t
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &conn.Metadata); err != nil {
			return nil, err
		}
	}
	return conn, nil
}

func scanConnections(rows *sql.Rows) ([]*model.PlatformConnection, error) {
	var list []*model.PlatformConnection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, conn)
	}
	return list, rows.Err()
}
