package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dev-pulse/domain/model"
	"dev-pulse/usecase"
)

func TestHeatmap_RecalculateDay_WeightsAndTotals(t *testing.T) {
	mockStats := new(MockPlatformStatRepository)
	mockHeatmap := new(MockHeatmapRepository)

	date := day("2026-08-30")
	rows := []*model.PlatformStat{
		{Platform: model.PlatformGitHub, Commits: 3},
		{Platform: model.PlatformLeetCode, EasySolved: 1, HardSolved: 1},
		{Platform: model.PlatformTrello, TasksCompleted: 2},
		{Platform: model.PlatformGoogleCalendar, EventsAttended: 4},
	}
	mockStats.On("GetByUserAndDate", mock.Anything, int64(1), date).Return(rows, nil).Once()
	mockHeatmap.On("Upsert", mock.Anything, mock.MatchedBy(func(e *model.ActivityHeatmapEntry) bool {
		return e.Commits == 3 &&
			e.ProblemsSolved == 2 &&
			e.TasksCompleted == 2 &&
			e.CalendarEvents == 4 &&
			e.TotalActivities == 11 &&
			e.ActivityScore == 3*5+2*10+2*3+4*1
	})).Return(nil).Once()

	heatmapUsecase := usecase.NewHeatmapUsecase(mockStats, mockHeatmap)
	entry, err := heatmapUsecase.RecalculateDay(context.Background(), 1, date)

	require.NoError(t, err)
	assert.Equal(t, 45, entry.ActivityScore)
	mockHeatmap.AssertExpectations(t)
}

func TestHeatmap_RecalculateDay_Idempotent(t *testing.T) {
	mockStats := new(MockPlatformStatRepository)
	mockHeatmap := new(MockHeatmapRepository)

	date := day("2026-08-30")
	rows := []*model.PlatformStat{{Platform: model.PlatformGitHub, Commits: 1}}
	mockStats.On("GetByUserAndDate", mock.Anything, int64(1), date).Return(rows, nil).Twice()
	mockHeatmap.On("Upsert", mock.Anything, mock.Anything).Return(nil).Twice()

	heatmapUsecase := usecase.NewHeatmapUsecase(mockStats, mockHeatmap)
	first, err := heatmapUsecase.RecalculateDay(context.Background(), 1, date)
	require.NoError(t, err)
	second, err := heatmapUsecase.RecalculateDay(context.Background(), 1, date)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestHeatmap_RecalculateDay_NoRowsWritesZeroes(t *testing.T) {
	mockStats := new(MockPlatformStatRepository)
	mockHeatmap := new(MockHeatmapRepository)

	date := day("2026-08-30")
	mockStats.On("GetByUserAndDate", mock.Anything, int64(2), date).
		Return([]*model.PlatformStat{}, nil).Once()
	mockHeatmap.On("Upsert", mock.Anything, mock.MatchedBy(func(e *model.ActivityHeatmapEntry) bool {
		return e.TotalActivities == 0 && e.ActivityScore == 0
	})).Return(nil).Once()

	heatmapUsecase := usecase.NewHeatmapUsecase(mockStats, mockHeatmap)
	_, err := heatmapUsecase.RecalculateDay(context.Background(), 2, date)
	require.NoError(t, err)
	mockHeatmap.AssertExpectations(t)
}

func TestHeatmap_GetHeatmap_Summary(t *testing.T) {
	mockStats := new(MockPlatformStatRepository)
	mockHeatmap := new(MockHeatmapRepository)

	entries := []model.ActivityHeatmapEntry{
		{TotalActivities: 5, ActivityScore: 25},
		{TotalActivities: 0, ActivityScore: 0},
		{TotalActivities: 2, ActivityScore: 7},
	}
	mockHeatmap.On("GetRange", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return(entries, nil).Once()

	heatmapUsecase := usecase.NewHeatmapUsecase(mockStats, mockHeatmap)
	res, err := heatmapUsecase.GetHeatmap(context.Background(), 1, 30)

	require.NoError(t, err)
	assert.Equal(t, 30, res.Days)
	assert.Equal(t, 2, res.Summary.ActiveDays)
	assert.Equal(t, 7, res.Summary.TotalActivities)
	assert.Equal(t, 32, res.Summary.TotalScore)
	assert.InDelta(t, float64(32)/30, res.Summary.AverageScore, 1e-9)
}

func TestHeatmap_GetHeatmap_RejectsHugeWindow(t *testing.T) {
	heatmapUsecase := usecase.NewHeatmapUsecase(new(MockPlatformStatRepository), new(MockHeatmapRepository))
	_, err := heatmapUsecase.GetHeatmap(context.Background(), 1, 10000)
	assert.Error(t, err)
}
