package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dev-pulse/domain/model"
	"dev-pulse/usecase"
)

func leaderboardFixture() (*MockLeaderboardRepository, *MockUserRepository, *MockPlatformStatRepository, *MockMissionRepository, *MockLeaderboardCache, usecase.ILeaderboardUsecase) {
	mockLeaderboard := new(MockLeaderboardRepository)
	mockUsers := new(MockUserRepository)
	mockStats := new(MockPlatformStatRepository)
	mockMissions := new(MockMissionRepository)
	mockCache := new(MockLeaderboardCache)

	points := usecase.NewPointsUsecase(mockStats, mockMissions, mockUsers)
	lb := usecase.NewLeaderboardUsecase(mockLeaderboard, mockUsers, points, mockCache, time.Hour, 1000)
	return mockLeaderboard, mockUsers, mockStats, mockMissions, mockCache, lb
}

func TestLeaderboard_Recalculate_RanksAndTies(t *testing.T) {
	mockLeaderboard, mockUsers, mockStats, mockMissions, mockCache, lb := leaderboardFixture()

	mockUsers.On("ActiveIDs", mock.Anything, 1000).Return([]int64{1, 2, 3}, nil).Once()

	// Users 1 and 3 tie on score; 2 is ahead.
	scores := map[int64]model.StatTotals{
		1: {Commits: 2}, // 10
		2: {Commits: 4}, // 20
		3: {Commits: 2}, // 10
	}
	for id, totals := range scores {
		mockStats.On("Totals", mock.Anything, id, mock.Anything, (*model.Platform)(nil)).
			Return(totals, nil).Once()
		mockMissions.On("CompletedPoints", mock.Anything, id, mock.Anything).
			Return(0, 0, nil).Once()
		mockUsers.On("GetById", mock.Anything, id).
			Return(model.User{ID: id, UserName: "user"}, nil).Once()
	}
	mockLeaderboard.On("InsertGeneration", mock.Anything, mock.Anything).Return(nil).Once()
	mockCache.On("Set", mock.Anything, model.PeriodDaily, (*model.Platform)(nil), mock.Anything, mock.Anything, time.Hour).
		Return(nil).Once()

	entries, err := lb.Recalculate(context.Background(), model.PeriodDaily, nil)

	require.NoError(t, err)
	require.Len(t, entries, 3)
	// Highest score first, ties broken by ascending user id.
	assert.Equal(t, int64(2), entries[0].UserID)
	assert.Equal(t, int64(1), entries[1].UserID)
	assert.Equal(t, int64(3), entries[2].UserID)
	// Ranks are 1-based and contiguous.
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
	mockLeaderboard.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestLeaderboard_Recalculate_NoCandidates(t *testing.T) {
	mockLeaderboard, mockUsers, _, _, mockCache, lb := leaderboardFixture()

	mockUsers.On("ActiveIDs", mock.Anything, 1000).Return([]int64{}, nil).Once()
	mockCache.On("Set", mock.Anything, model.PeriodWeekly, (*model.Platform)(nil), mock.Anything, mock.Anything, time.Hour).
		Return(nil).Once()

	entries, err := lb.Recalculate(context.Background(), model.PeriodWeekly, nil)

	require.NoError(t, err)
	assert.Empty(t, entries)
	mockLeaderboard.AssertNotCalled(t, "InsertGeneration", mock.Anything, mock.Anything)
}

func TestLeaderboard_Get_ServesFreshCache(t *testing.T) {
	_, _, _, _, mockCache, lb := leaderboardFixture()

	cached := []model.LeaderboardEntry{{UserID: 1, Rank: 1, Score: 99}}
	mockCache.On("Get", mock.Anything, model.PeriodAllTime, (*model.Platform)(nil)).
		Return(cached, time.Now().Add(-time.Minute), nil).Once()

	entries, err := lb.GetLeaderboard(context.Background(), model.PeriodAllTime, nil, 50)

	require.NoError(t, err)
	assert.Equal(t, cached, entries)
	mockCache.AssertExpectations(t)
}

func TestLeaderboard_Get_RejectsUnknownPeriod(t *testing.T) {
	_, _, _, _, _, lb := leaderboardFixture()

	_, err := lb.GetLeaderboard(context.Background(), model.Period("hourly"), nil, 50)
	assert.Error(t, err)
}

func TestLeaderboard_Get_RecomputesWhenStale(t *testing.T) {
	mockLeaderboard, mockUsers, mockStats, mockMissions, mockCache, lb := leaderboardFixture()

	stale := time.Now().Add(-2 * time.Hour)
	mockCache.On("Get", mock.Anything, model.PeriodDaily, (*model.Platform)(nil)).
		Return([]model.LeaderboardEntry{{UserID: 1}}, stale, nil).Once()
	mockLeaderboard.On("LatestGeneration", mock.Anything, model.PeriodDaily, (*model.Platform)(nil), 50).
		Return([]model.LeaderboardEntry{{UserID: 1}}, stale, nil).Once()

	mockUsers.On("ActiveIDs", mock.Anything, 1000).Return([]int64{1}, nil).Once()
	mockStats.On("Totals", mock.Anything, int64(1), mock.Anything, (*model.Platform)(nil)).
		Return(model.StatTotals{Commits: 1}, nil).Once()
	mockMissions.On("CompletedPoints", mock.Anything, int64(1), mock.Anything).
		Return(0, 0, nil).Once()
	mockUsers.On("GetById", mock.Anything, int64(1)).
		Return(model.User{ID: 1, UserName: "solo"}, nil).Once()
	mockLeaderboard.On("InsertGeneration", mock.Anything, mock.Anything).Return(nil).Once()
	mockCache.On("Set", mock.Anything, model.PeriodDaily, (*model.Platform)(nil), mock.Anything, mock.Anything, time.Hour).
		Return(nil).Once()

	entries, err := lb.GetLeaderboard(context.Background(), model.PeriodDaily, nil, 50)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Rank)
	mockLeaderboard.AssertExpectations(t)
}
