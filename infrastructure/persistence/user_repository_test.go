package persistence

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/model"
)

// TestUserRepository_GetById tests the GetById method with isolated mock
func TestUserRepository_GetById(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewUserRepository(db)

	createdAt := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
	updatedAt := time.Date(2025, time.March, 12, 9, 30, 0, 0, time.UTC)
	lastActivity := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectPrepare(regexp.QuoteMeta(`SELECT u.id, u.name, u.user_name, u.password, u.total_points, u.current_streak, u.longest_streak, u.last_activity_date, u.created_at, u.updated_at
	FROM users AS u
	WHERE u.id = $1`)).
		ExpectQuery().WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user_name", "password", "total_points", "current_streak", "longest_streak", "last_activity_date", "created_at", "updated_at"}).
			AddRow(1, "Ada Lovelace", "ada", "a252f77af72638ea5a0f9e5fbe5f2b2e", 1250, 7, 30, lastActivity, createdAt, updatedAt))

	res, err := repository.GetById(context.Background(), 1)

	require.NoError(t, err)
	require.Equal(t, int64(1), res.ID)
	require.Equal(t, "ada", res.UserName)
	require.Equal(t, int64(1250), res.TotalPoints)
	require.Equal(t, 7, res.CurrentStreak)
	require.Equal(t, 30, res.LongestStreak)
	require.NotNil(t, res.LastActivityDate)
	require.Equal(t, lastActivity, *res.LastActivityDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_GetByUserName tests the GetByUserName method with isolated mock
func TestUserRepository_GetByUserName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewUserRepository(db)

	createdAt := time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)

	mock.ExpectPrepare(regexp.QuoteMeta(`SELECT u.id, u.name, u.user_name, u.password, u.total_points, u.current_streak, u.longest_streak, u.last_activity_date, u.created_at, u.updated_at
	FROM users AS u
	WHERE u.user_name = $1`)).
		ExpectQuery().WithArgs("ada").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user_name", "password", "total_points", "current_streak", "longest_streak", "last_activity_date", "created_at", "updated_at"}).
			AddRow(1, "Ada Lovelace", "ada", "a252f77af72638ea5a0f9e5fbe5f2b2e", 0, 0, 0, nil, createdAt, createdAt))

	res, err := repository.GetByUserName(context.Background(), "ada")

	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", res.Name)
	require.Nil(t, res.LastActivityDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_GetById_NotFound tests the missing-row path
func TestUserRepository_GetById_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewUserRepository(db)

	mock.ExpectPrepare(regexp.QuoteMeta(`SELECT u.id, u.name, u.user_name, u.password, u.total_points, u.current_streak, u.longest_streak, u.last_activity_date, u.created_at, u.updated_at
	FROM users AS u
	WHERE u.id = $1`)).
		ExpectQuery().WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user_name", "password", "total_points", "current_streak", "longest_streak", "last_activity_date", "created_at", "updated_at"}))

	res, err := repository.GetById(context.Background(), 404)

	require.Error(t, err)
	require.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	require.Equal(t, model.User{}, res)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_GetById_PrepareError tests error handling in GetById
func TestUserRepository_GetById_PrepareError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewUserRepository(db)

	mock.ExpectPrepare(regexp.QuoteMeta(`SELECT u.id, u.name, u.user_name, u.password, u.total_points, u.current_streak, u.longest_streak, u.last_activity_date, u.created_at, u.updated_at
	FROM users AS u
	WHERE u.id = $1`)).
		WillReturnError(fmt.Errorf("prepare error"))

	res, err := repository.GetById(context.Background(), 1)

	require.Error(t, err)
	require.Equal(t, model.User{}, res)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_CreateUser tests the CreateUser method with isolated mock
func TestUserRepository_CreateUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users (name, user_name, password, created_at, updated_at) VALUES ($1,$2,$3,$4,$4)`)).
		WithArgs("Ada Lovelace", "ada", "a252f77af72638ea5a0f9e5fbe5f2b2e", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := model.User{
		Name:     "Ada Lovelace",
		UserName: "ada",
		Password: "a252f77af72638ea5a0f9e5fbe5f2b2e",
	}

	err = repository.CreateUser(context.Background(), user)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestUserRepository_ActiveIDs tests the ranking candidate query
func TestUserRepository_ActiveIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repository := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT DISTINCT u.id FROM users u`)).
		WithArgs(50).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(5))

	ids, err := repository.ActiveIDs(context.Background(), 50)

	require.NoError(t, err)
	require.Equal(t, []int64{1, 2, 5}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}
