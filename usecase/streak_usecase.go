package usecase

import (
	"context"
	"time"

	"dev-pulse/domain/model"
	"dev-pulse/domain/repository"
	"dev-pulse/infrastructure/utils"
)

type IStreakUsecase interface {
	// Recalculate derives the streak from the heatmap ledger and writes
	// the cached projection on the user row.
	Recalculate(ctx context.Context, userID int64) (model.StreakState, error)
}

type streakUsecase struct {
	heatmap repository.IHeatmap
	users   repository.IUser
}

func NewStreakUsecase(heatmap repository.IHeatmap, users repository.IUser) IStreakUsecase {
	return &streakUsecase{heatmap: heatmap, users: users}
}

func (u *streakUsecase) Recalculate(ctx context.Context, userID int64) (model.StreakState, error) {
	dates, err := u.heatmap.ActiveDatesDesc(ctx, userID)
	if err != nil {
		return model.StreakState{}, err
	}
	state := ComputeStreak(dates, utils.GetCurrentTime())
	if err := u.users.UpdateStreak(ctx, userID, state); err != nil {
		return state, err
	}
	return state, nil
}

// ComputeStreak walks active dates, most recent first. The current
// streak counts consecutive days ending today or yesterday; a day
// without activity today is not yet a break, but a gap of more than one
// day resets the current streak to zero. The longest streak considers
// every run in the ledger.
func ComputeStreak(datesDesc []time.Time, now time.Time) model.StreakState {
	var state model.StreakState
	if len(datesDesc) == 0 {
		return state
	}

	today := utils.Midnight(now)
	last := utils.Midnight(datesDesc[0])
	state.LastActivityDate = &last

	// Current streak, with the one-day grace window.
	if daysBetween(last, today) <= 1 {
		state.CurrentStreak = 1
		prev := last
		for _, d := range datesDesc[1:] {
			d = utils.Midnight(d)
			if daysBetween(d, prev) != 1 {
				break
			}
			state.CurrentStreak++
			prev = d
		}
	}

	// Longest run anywhere in the ledger.
	run := 1
	state.LongestStreak = 1
	prev := last
	for _, d := range datesDesc[1:] {
		d = utils.Midnight(d)
		if daysBetween(d, prev) == 1 {
			run++
		} else {
			run = 1
		}
		if run > state.LongestStreak {
			state.LongestStreak = run
		}
		prev = d
	}
	if state.CurrentStreak > state.LongestStreak {
		state.LongestStreak = state.CurrentStreak
	}
	return state
}

// daysBetween counts whole days from a to b at midnight resolution.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
