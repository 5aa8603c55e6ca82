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

func day(s string) time.Time {
	t, _ := time.ParseInLocation("2006-01-02", s, time.Local)
	return t
}

func TestComputeStreak_NoActivity(t *testing.T) {
	state := usecase.ComputeStreak(nil, day("2026-08-31"))
	assert.Equal(t, 0, state.CurrentStreak)
	assert.Equal(t, 0, state.LongestStreak)
	assert.Nil(t, state.LastActivityDate)
}

func TestComputeStreak_ConsecutiveRunEndingToday(t *testing.T) {
	dates := []time.Time{day("2026-08-31"), day("2026-08-30"), day("2026-08-29")}
	state := usecase.ComputeStreak(dates, day("2026-08-31").Add(15*time.Hour))
	assert.Equal(t, 3, state.CurrentStreak)
	assert.Equal(t, 3, state.LongestStreak)
}

func TestComputeStreak_YesterdayKeepsStreakAlive(t *testing.T) {
	// No activity yet today; the run ending yesterday still counts.
	dates := []time.Time{day("2026-08-30"), day("2026-08-29")}
	state := usecase.ComputeStreak(dates, day("2026-08-31").Add(9*time.Hour))
	assert.Equal(t, 2, state.CurrentStreak)
}

func TestComputeStreak_GapResetsCurrentToZero(t *testing.T) {
	// Last activity two days ago: the streak is broken.
	dates := []time.Time{day("2026-08-29"), day("2026-08-28"), day("2026-08-27")}
	state := usecase.ComputeStreak(dates, day("2026-08-31").Add(9*time.Hour))
	assert.Equal(t, 0, state.CurrentStreak)
	assert.Equal(t, 3, state.LongestStreak)
}

func TestComputeStreak_LongestSurvivesBreaks(t *testing.T) {
	dates := []time.Time{
		day("2026-08-31"),
		// break
		day("2026-08-20"), day("2026-08-19"), day("2026-08-18"), day("2026-08-17"), day("2026-08-16"),
	}
	state := usecase.ComputeStreak(dates, day("2026-08-31").Add(12*time.Hour))
	assert.Equal(t, 1, state.CurrentStreak)
	assert.Equal(t, 5, state.LongestStreak)
}

func TestComputeStreak_SingleDay(t *testing.T) {
	dates := []time.Time{day("2026-08-31")}
	state := usecase.ComputeStreak(dates, day("2026-08-31").Add(time.Hour))
	assert.Equal(t, 1, state.CurrentStreak)
	assert.Equal(t, 1, state.LongestStreak)
	require.NotNil(t, state.LastActivityDate)
	assert.Equal(t, day("2026-08-31"), *state.LastActivityDate)
}

func TestStreakUsecase_RecalculatePersists(t *testing.T) {
	mockHeatmap := new(MockHeatmapRepository)
	mockUsers := new(MockUserRepository)

	dates := []time.Time{day("2026-08-30"), day("2026-08-29")}
	mockHeatmap.On("ActiveDatesDesc", mock.Anything, int64(7)).Return(dates, nil).Once()
	mockUsers.On("UpdateStreak", mock.Anything, int64(7), mock.MatchedBy(func(s model.StreakState) bool {
		return s.LongestStreak == 2
	})).Return(nil).Once()

	streakUsecase := usecase.NewStreakUsecase(mockHeatmap, mockUsers)
	state, err := streakUsecase.Recalculate(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 2, state.LongestStreak)
	mockHeatmap.AssertExpectations(t)
	mockUsers.AssertExpectations(t)
}
