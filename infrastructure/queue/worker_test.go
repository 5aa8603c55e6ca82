package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"dev-pulse/domain/apperror"
	"dev-pulse/domain/model"
)

type fakeQueue struct {
	mock.Mock
}

func (m *fakeQueue) Enqueue(ctx context.Context, job *model.QueueJob) (bool, error) {
	args := m.Called(ctx, job)
	return args.Bool(0), args.Error(1)
}

func (m *fakeQueue) Dequeue(ctx context.Context, lane model.Lane, wait time.Duration) (*model.QueueJob, error) {
	args := m.Called(ctx, lane, wait)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.QueueJob), args.Error(1)
}

func (m *fakeQueue) Complete(ctx context.Context, job *model.QueueJob) error {
	return m.Called(ctx, job).Error(0)
}

func (m *fakeQueue) Fail(ctx context.Context, job *model.QueueJob, cause error, retryable bool) (bool, error) {
	args := m.Called(ctx, job, cause, retryable)
	return args.Bool(0), args.Error(1)
}

func (m *fakeQueue) PromoteDue(ctx context.Context, lane model.Lane) (int, error) {
	args := m.Called(ctx, lane)
	return args.Int(0), args.Error(1)
}

type fakeExecutor struct {
	mock.Mock
}

func (m *fakeExecutor) SyncPlatform(ctx context.Context, userID, connectionID int64, platform model.Platform) error {
	return m.Called(ctx, userID, connectionID, platform).Error(0)
}

type fakeRecalculator struct {
	mock.Mock
}

func (m *fakeRecalculator) Recalculate(ctx context.Context, userID int64, day string) error {
	return m.Called(ctx, userID, day).Error(0)
}

type fakeTracker struct {
	mock.Mock
}

func (m *fakeTracker) Begin(ctx context.Context, connectionID int64) error {
	return m.Called(ctx, connectionID).Error(0)
}

func (m *fakeTracker) Complete(ctx context.Context, connectionID int64) error {
	return m.Called(ctx, connectionID).Error(0)
}

func (m *fakeTracker) Fail(ctx context.Context, connectionID int64, message string) error {
	return m.Called(ctx, connectionID, message).Error(0)
}

type fakeSyncJobs struct {
	mock.Mock
}

func (m *fakeSyncJobs) Create(ctx context.Context, job *model.SyncJob) (int64, error) {
	args := m.Called(ctx, job)
	return args.Get(0).(int64), args.Error(1)
}

func (m *fakeSyncJobs) MarkProcessing(ctx context.Context, id int64, attempt int) error {
	return m.Called(ctx, id, attempt).Error(0)
}

func (m *fakeSyncJobs) MarkCompleted(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *fakeSyncJobs) MarkFailed(ctx context.Context, id int64, errorMessage string) error {
	return m.Called(ctx, id, errorMessage).Error(0)
}

func (m *fakeSyncJobs) ListByUser(ctx context.Context, userID int64, limit int) ([]model.SyncJob, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SyncJob), args.Error(1)
}

type fakeConnections struct {
	mock.Mock
}

func (m *fakeConnections) Create(ctx context.Context, conn *model.PlatformConnection) (int64, error) {
	args := m.Called(ctx, conn)
	return args.Get(0).(int64), args.Error(1)
}

func (m *fakeConnections) GetByID(ctx context.Context, id int64) (*model.PlatformConnection, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlatformConnection), args.Error(1)
}

func (m *fakeConnections) GetActiveByUser(ctx context.Context, userID int64) ([]*model.PlatformConnection, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PlatformConnection), args.Error(1)
}

func (m *fakeConnections) GetActiveByUserAndPlatform(ctx context.Context, userID int64, platform model.Platform) (*model.PlatformConnection, error) {
	args := m.Called(ctx, userID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlatformConnection), args.Error(1)
}

func (m *fakeConnections) ListActive(ctx context.Context) ([]*model.PlatformConnection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PlatformConnection), args.Error(1)
}

func (m *fakeConnections) SetSyncStatus(ctx context.Context, id int64, status model.SyncStatus, errorMessage *string) error {
	return m.Called(ctx, id, status, errorMessage).Error(0)
}

func (m *fakeConnections) Deactivate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type workerFixture struct {
	queue       *fakeQueue
	executor    *fakeExecutor
	recalc      *fakeRecalculator
	tracker     *fakeTracker
	syncJobs    *fakeSyncJobs
	connections *fakeConnections
	worker      *Worker
}

func newWorkerFixture() *workerFixture {
	f := &workerFixture{
		queue:       new(fakeQueue),
		executor:    new(fakeExecutor),
		recalc:      new(fakeRecalculator),
		tracker:     new(fakeTracker),
		syncJobs:    new(fakeSyncJobs),
		connections: new(fakeConnections),
	}
	f.worker = NewWorker(f.queue, f.executor, f.recalc, f.tracker, f.syncJobs, f.connections, 1, time.Millisecond, time.Minute)
	return f
}

func syncQueueJob() *model.QueueJob {
	return &model.QueueJob{
		ID:           "job-1",
		Lane:         model.LaneSync,
		UserID:       1,
		ConnectionID: 11,
		Platform:     model.PlatformGitHub,
		Attempts:     0,
		MaxAttempts:  3,
		SyncJobID:    77,
	}
}

func TestWorker_SyncSuccessEnqueuesRecalc(t *testing.T) {
	f := newWorkerFixture()
	job := syncQueueJob()

	f.syncJobs.On("MarkProcessing", mock.Anything, int64(77), 1).Return(nil).Once()
	f.tracker.On("Begin", mock.Anything, int64(11)).Return(nil).Once()
	f.executor.On("SyncPlatform", mock.Anything, int64(1), int64(11), model.PlatformGitHub).Return(nil).Once()
	f.syncJobs.On("MarkCompleted", mock.Anything, int64(77)).Return(nil).Once()
	f.tracker.On("Complete", mock.Anything, int64(11)).Return(nil).Once()
	f.queue.On("Complete", mock.Anything, job).Return(nil).Once()
	f.queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(j *model.QueueJob) bool {
		return j.Lane == model.LaneRecalc && j.UserID == 1 && j.Date != ""
	})).Return(true, nil).Once()

	f.worker.processSync(context.Background(), job)

	f.queue.AssertExpectations(t)
	f.tracker.AssertExpectations(t)
	f.syncJobs.AssertExpectations(t)
}

func TestWorker_SyncFailureHandsRetryToQueue(t *testing.T) {
	f := newWorkerFixture()
	job := syncQueueJob()
	cause := apperror.Unavailable("upstream down", errors.New("status 502"))

	f.syncJobs.On("MarkProcessing", mock.Anything, int64(77), 1).Return(nil).Once()
	f.tracker.On("Begin", mock.Anything, int64(11)).Return(nil).Once()
	f.executor.On("SyncPlatform", mock.Anything, int64(1), int64(11), model.PlatformGitHub).Return(cause).Once()
	f.syncJobs.On("MarkFailed", mock.Anything, int64(77), mock.Anything).Return(nil).Once()
	f.tracker.On("Fail", mock.Anything, int64(11), mock.Anything).Return(nil).Once()
	f.queue.On("Fail", mock.Anything, job, cause, true).Return(true, nil).Once()

	f.worker.processSync(context.Background(), job)

	f.queue.AssertExpectations(t)
	f.connections.AssertNotCalled(t, "Deactivate", mock.Anything, mock.Anything)
	f.queue.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestWorker_ExhaustedAttemptsStopRetrying(t *testing.T) {
	f := newWorkerFixture()
	job := syncQueueJob()
	job.Attempts = 2
	cause := apperror.Unavailable("upstream down", nil)

	f.syncJobs.On("MarkProcessing", mock.Anything, int64(77), 3).Return(nil).Once()
	f.tracker.On("Begin", mock.Anything, int64(11)).Return(nil).Once()
	f.executor.On("SyncPlatform", mock.Anything, int64(1), int64(11), model.PlatformGitHub).Return(cause).Once()
	f.syncJobs.On("MarkFailed", mock.Anything, int64(77), mock.Anything).Return(nil).Once()
	f.tracker.On("Fail", mock.Anything, int64(11), mock.Anything).Return(nil).Once()
	// Third strike: the queue reports no retry was scheduled.
	f.queue.On("Fail", mock.Anything, job, cause, true).Return(false, nil).Once()

	f.worker.processSync(context.Background(), job)

	f.queue.AssertExpectations(t)
	f.syncJobs.AssertExpectations(t)
	f.tracker.AssertExpectations(t)
}

func TestWorker_InvalidCredentialDeactivatesConnection(t *testing.T) {
	f := newWorkerFixture()
	job := syncQueueJob()
	cause := apperror.InvalidCredential("token revoked", nil)

	f.syncJobs.On("MarkProcessing", mock.Anything, int64(77), 1).Return(nil).Once()
	f.tracker.On("Begin", mock.Anything, int64(11)).Return(nil).Once()
	f.executor.On("SyncPlatform", mock.Anything, int64(1), int64(11), model.PlatformGitHub).Return(cause).Once()
	f.syncJobs.On("MarkFailed", mock.Anything, int64(77), mock.Anything).Return(nil).Once()
	f.tracker.On("Fail", mock.Anything, int64(11), mock.Anything).Return(nil).Once()
	f.connections.On("Deactivate", mock.Anything, int64(11)).Return(nil).Once()
	f.queue.On("Fail", mock.Anything, job, cause, false).Return(false, nil).Once()

	f.worker.processSync(context.Background(), job)

	f.connections.AssertExpectations(t)
	f.queue.AssertExpectations(t)
}

func TestWorker_BeginConflictCoalescesWithoutExecuting(t *testing.T) {
	f := newWorkerFixture()
	job := syncQueueJob()

	f.syncJobs.On("MarkProcessing", mock.Anything, int64(77), 1).Return(nil).Once()
	f.tracker.On("Begin", mock.Anything, int64(11)).
		Return(apperror.Validation("illegal sync status transition SYNCING -> SYNCING", nil)).Once()
	f.syncJobs.On("MarkFailed", mock.Anything, int64(77), "coalesced with a sync already in progress").Return(nil).Once()
	f.queue.On("Complete", mock.Anything, job).Return(nil).Once()

	f.worker.processSync(context.Background(), job)

	f.executor.AssertNotCalled(t, "SyncPlatform", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.tracker.AssertNotCalled(t, "Fail", mock.Anything, mock.Anything, mock.Anything)
	f.queue.AssertExpectations(t)
	f.syncJobs.AssertExpectations(t)
}

func TestWorker_RecalcJobRunsRecalculator(t *testing.T) {
	f := newWorkerFixture()
	job := &model.QueueJob{ID: "r-1", Lane: model.LaneRecalc, UserID: 1, Date: "2025-03-12"}

	f.recalc.On("Recalculate", mock.Anything, int64(1), "2025-03-12").Return(nil).Once()
	f.queue.On("Complete", mock.Anything, job).Return(nil).Once()

	f.worker.process(context.Background(), job)

	f.recalc.AssertExpectations(t)
	f.queue.AssertExpectations(t)
}

func TestWorker_RecalcFailureGoesBackToQueue(t *testing.T) {
	f := newWorkerFixture()
	job := &model.QueueJob{ID: "r-2", Lane: model.LaneRecalc, UserID: 1, Date: "2025-03-12"}
	cause := apperror.Unavailable("database unavailable", nil)

	f.recalc.On("Recalculate", mock.Anything, int64(1), "2025-03-12").Return(cause).Once()
	f.queue.On("Fail", mock.Anything, job, cause, true).Return(true, nil).Once()

	f.worker.process(context.Background(), job)

	f.queue.AssertExpectations(t)
}

func TestWorker_RecalcDayMatchesStatDay(t *testing.T) {
	f := newWorkerFixture()
	job := syncQueueJob()

	var recalcDate string
	f.syncJobs.On("MarkProcessing", mock.Anything, int64(77), 1).Return(nil).Once()
	f.tracker.On("Begin", mock.Anything, int64(11)).Return(nil).Once()
	f.executor.On("SyncPlatform", mock.Anything, int64(1), int64(11), model.PlatformGitHub).Return(nil).Once()
	f.syncJobs.On("MarkCompleted", mock.Anything, int64(77)).Return(nil).Once()
	f.tracker.On("Complete", mock.Anything, int64(11)).Return(nil).Once()
	f.queue.On("Complete", mock.Anything, job).Return(nil).Once()
	f.queue.On("Enqueue", mock.Anything, mock.MatchedBy(func(j *model.QueueJob) bool {
		recalcDate = j.Date
		return true
	})).Return(true, nil).Once()

	f.worker.processSync(context.Background(), job)

	// Stats are stamped on the UTC calendar day; the recalc key must
	// name the same day no matter the host zone.
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), recalcDate)
}
