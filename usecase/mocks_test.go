package usecase_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"dev-pulse/domain/model"
)

// Mock implementations

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetById(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) GetByUserName(ctx context.Context, userName string) (model.User, error) {
	args := m.Called(ctx, userName)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateTotalPoints(ctx context.Context, userID int64, totalPoints int64) error {
	args := m.Called(ctx, userID, totalPoints)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateStreak(ctx context.Context, userID int64, streak model.StreakState) error {
	args := m.Called(ctx, userID, streak)
	return args.Error(0)
}

func (m *MockUserRepository) ActiveIDs(ctx context.Context, limit int) ([]int64, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

type MockConnectionRepository struct {
	mock.Mock
}

func (m *MockConnectionRepository) Create(ctx context.Context, conn *model.PlatformConnection) (int64, error) {
	args := m.Called(ctx, conn)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockConnectionRepository) GetByID(ctx context.Context, id int64) (*model.PlatformConnection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlatformConnection), args.Error(1)
}

func (m *MockConnectionRepository) GetActiveByUser(ctx context.Context, userID int64) ([]*model.PlatformConnection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PlatformConnection), args.Error(1)
}

func (m *MockConnectionRepository) GetActiveByUserAndPlatform(ctx context.Context, userID int64, platform model.Platform) (*model.PlatformConnection, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlatformConnection), args.Error(1)
}

func (m *MockConnectionRepository) ListActive(ctx context.Context) ([]*model.PlatformConnection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PlatformConnection), args.Error(1)
}

func (m *MockConnectionRepository) SetSyncStatus(ctx context.Context, id int64, status model.SyncStatus, errorMessage *string) error {
	args := m.Called(ctx, id, status, errorMessage)
	return args.Error(0)
}

func (m *MockConnectionRepository) Deactivate(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPlatformStatRepository struct {
	mock.Mock
}

func (m *MockPlatformStatRepository) Upsert(ctx context.Context, stat *model.PlatformStat) error {
	args := m.Called(ctx, stat)
	return args.Error(0)
}

func (m *MockPlatformStatRepository) GetByUserAndDate(ctx context.Context, userID int64, date time.Time) ([]*model.PlatformStat, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PlatformStat), args.Error(1)
}

func (m *MockPlatformStatRepository) Totals(ctx context.Context, userID int64, since time.Time, platform *model.Platform) (model.StatTotals, error) {
	args := m.Called(ctx, userID, since, platform)
	return args.Get(0).(model.StatTotals), args.Error(1)
}

type MockHeatmapRepository struct {
	mock.Mock
}

func (m *MockHeatmapRepository) Upsert(ctx context.Context, entry *model.ActivityHeatmapEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHeatmapRepository) GetRange(ctx context.Context, userID int64, from, to time.Time) ([]model.ActivityHeatmapEntry, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ActivityHeatmapEntry), args.Error(1)
}

func (m *MockHeatmapRepository) ActiveDatesDesc(ctx context.Context, userID int64) ([]time.Time, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

type MockLeaderboardRepository struct {
	mock.Mock
}

func (m *MockLeaderboardRepository) InsertGeneration(ctx context.Context, entries []model.LeaderboardEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockLeaderboardRepository) LatestGeneration(ctx context.Context, period model.Period, platform *model.Platform, limit int) ([]model.LeaderboardEntry, time.Time, error) {
	args := m.Called(ctx, period, platform, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(time.Time), args.Error(2)
	}
	return args.Get(0).([]model.LeaderboardEntry), args.Get(1).(time.Time), args.Error(2)
}

type MockMissionRepository struct {
	mock.Mock
}

func (m *MockMissionRepository) CompletedPoints(ctx context.Context, userID int64, since time.Time) (int, int, error) {
	args := m.Called(ctx, userID, since)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockMissionRepository) ListByUser(ctx context.Context, userID int64) ([]model.UserMission, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserMission), args.Error(1)
}

type MockSyncJobRepository struct {
	mock.Mock
}

func (m *MockSyncJobRepository) Create(ctx context.Context, job *model.SyncJob) (int64, error) {
	args := m.Called(ctx, job)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSyncJobRepository) MarkProcessing(ctx context.Context, id int64, attempt int) error {
	args := m.Called(ctx, id, attempt)
	return args.Error(0)
}

func (m *MockSyncJobRepository) MarkCompleted(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSyncJobRepository) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	args := m.Called(ctx, id, errorMessage)
	return args.Error(0)
}

func (m *MockSyncJobRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.SyncJob, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SyncJob), args.Error(1)
}

type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) Enqueue(ctx context.Context, job *model.QueueJob) (bool, error) {
	args := m.Called(ctx, job)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobQueue) Dequeue(ctx context.Context, lane model.Lane, wait time.Duration) (*model.QueueJob, error) {
	args := m.Called(ctx, lane, wait)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QueueJob), args.Error(1)
}

func (m *MockJobQueue) Complete(ctx context.Context, job *model.QueueJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobQueue) Fail(ctx context.Context, job *model.QueueJob, cause error, retryable bool) (bool, error) {
	args := m.Called(ctx, job, cause, retryable)
	return args.Bool(0), args.Error(1)
}

func (m *MockJobQueue) PromoteDue(ctx context.Context, lane model.Lane) (int, error) {
	args := m.Called(ctx, lane)
	return args.Int(0), args.Error(1)
}

type MockCredentialVault struct {
	mock.Mock
}

func (m *MockCredentialVault) Seal(plaintext string) (string, error) {
	args := m.Called(plaintext)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialVault) Reveal(blob string) (string, error) {
	args := m.Called(blob)
	return args.String(0), args.Error(1)
}

type MockPlatformAdapter struct {
	mock.Mock
	platform model.Platform
}

func (m *MockPlatformAdapter) Platform() model.Platform { return m.platform }

func (m *MockPlatformAdapter) FetchUserData(ctx context.Context, conn *model.PlatformConnection) (*model.PlatformUser, error) {
	args := m.Called(ctx, conn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlatformUser), args.Error(1)
}

func (m *MockPlatformAdapter) SyncData(ctx context.Context, userID, connectionID int64) error {
	args := m.Called(ctx, userID, connectionID)
	return args.Error(0)
}

type MockLeaderboardCache struct {
	mock.Mock
}

func (m *MockLeaderboardCache) Get(ctx context.Context, period model.Period, platform *model.Platform) ([]model.LeaderboardEntry, time.Time, error) {
	args := m.Called(ctx, period, platform)
	if args.Get(0) == nil {
		return nil, args.Get(1).(time.Time), args.Error(2)
	}
	return args.Get(0).([]model.LeaderboardEntry), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockLeaderboardCache) Set(ctx context.Context, period model.Period, platform *model.Platform, entries []model.LeaderboardEntry, calculatedAt time.Time, ttl time.Duration) error {
	args := m.Called(ctx, period, platform, entries, calculatedAt, ttl)
	return args.Error(0)
}
