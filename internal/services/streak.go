package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/repos"
	"github.com/quietwaters-app/quietwaters-backend/internal/timeutil"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

// milestoneBands maps streak lengths worth celebrating to their band.
var milestoneBands = map[int]types.MilestoneBand{
	7:    types.MilestoneWeekly,
	14:   types.MilestoneWeekly,
	21:   types.MilestoneWeekly,
	30:   types.MilestoneMonthly,
	60:   types.MilestoneMonthly,
	90:   types.MilestoneMonthly,
	100:  types.MilestoneCentury,
	365:  types.MilestoneYearly,
	500:  types.MilestoneEpic,
	1000: types.MilestoneEpic,
}

type StreakService interface {
	// CheckAndUpdate advances the daily streak state machine: at most one
	// mutation per calendar day, +1 on an exactly-one-day gap, reset to 1
	// on anything longer.
	CheckAndUpdate(ctx context.Context, userID uuid.UUID) (*types.StreakResult, error)
	Get(ctx context.Context, userID uuid.UUID) (*types.StreakState, error)
}

type streakService struct {
	log   *logger.Logger
	repo  repos.StreakRepo
	clock timeutil.Clock
}

func NewStreakService(log *logger.Logger, repo repos.StreakRepo, clock timeutil.Clock) StreakService {
	serviceLog := log.With("service", "StreakService")
	return &streakService{log: serviceLog, repo: repo, clock: clock}
}

func (s *streakService) CheckAndUpdate(ctx context.Context, userID uuid.UUID) (*types.StreakResult, error) {
	state, err := s.repo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load streak state: %w", err)
	}
	if state == nil {
		state = &types.StreakState{ID: uuid.New(), UserID: userID}
	}

	// Same local-midnight truncation as notification scheduling, so "new
	// day" means the same thing everywhere.
	today := timeutil.DayStart(s.clock.Now())

	if state.LastActiveDay != nil {
		gap := timeutil.DaysBetween(*state.LastActiveDay, today)
		if gap <= 0 {
			return &types.StreakResult{
				Streak:   state.StreakCount,
				Longest:  state.LongestStreak,
				IsNewDay: false,
			}, nil
		}
		if gap == 1 {
			state.StreakCount++
		} else {
			state.StreakCount = 1
		}
	} else {
		state.StreakCount = 1
	}

	state.LastActiveDay = &today
	if state.StreakCount > state.LongestStreak {
		state.LongestStreak = state.StreakCount
	}

	if err := s.repo.Save(ctx, nil, state); err != nil {
		return nil, fmt.Errorf("save streak state: %w", err)
	}

	result := &types.StreakResult{
		Streak:   state.StreakCount,
		Longest:  state.LongestStreak,
		IsNewDay: true,
	}
	if band, ok := milestoneBands[state.StreakCount]; ok {
		result.Milestone = &types.Milestone{Days: state.StreakCount, Band: band}
	}
	return result, nil
}

func (s *streakService) Get(ctx context.Context, userID uuid.UUID) (*types.StreakState, error) {
	state, err := s.repo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load streak state: %w", err)
	}
	if state == nil {
		state = &types.StreakState{UserID: userID}
	}
	return state, nil
}
