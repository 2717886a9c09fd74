package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quietwaters-app/quietwaters-backend/internal/logger"
	"github.com/quietwaters-app/quietwaters-backend/internal/timeutil"
	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

func TestCheckAndUpdateTransitions(t *testing.T) {
	userID := uuid.New()
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 10, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name       string
		state      *types.StreakState
		now        time.Time
		wantStreak int
		wantNewDay bool
	}{
		{
			name:       "first ever check-in",
			state:      nil,
			now:        day(10),
			wantStreak: 1,
			wantNewDay: true,
		},
		{
			name: "second check-in same day is a no-op",
			state: &types.StreakState{
				UserID:        userID,
				StreakCount:   4,
				LongestStreak: 4,
				LastActiveDay: dayStartPtr(day(10)),
			},
			now:        day(10).Add(8 * time.Hour),
			wantStreak: 4,
			wantNewDay: false,
		},
		{
			name: "consecutive day increments",
			state: &types.StreakState{
				UserID:        userID,
				StreakCount:   4,
				LongestStreak: 4,
				LastActiveDay: dayStartPtr(day(10)),
			},
			now:        day(11),
			wantStreak: 5,
			wantNewDay: true,
		},
		{
			name: "two day gap resets to one",
			state: &types.StreakState{
				UserID:        userID,
				StreakCount:   12,
				LongestStreak: 12,
				LastActiveDay: dayStartPtr(day(10)),
			},
			now:        day(12),
			wantStreak: 1,
			wantNewDay: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeStreakRepo{state: tt.state}
			svc := NewStreakService(logger.NewNop(), repo, newFakeClock(tt.now))

			res, err := svc.CheckAndUpdate(context.Background(), userID)
			if err != nil {
				t.Fatalf("CheckAndUpdate: %v", err)
			}
			if res.Streak != tt.wantStreak {
				t.Fatalf("streak %d, want %d", res.Streak, tt.wantStreak)
			}
			if res.IsNewDay != tt.wantNewDay {
				t.Fatalf("isNewDay %v, want %v", res.IsNewDay, tt.wantNewDay)
			}
		})
	}
}

func TestCheckAndUpdateResetsAcrossSpringForward(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	// Clocks jump at 2am on Mar 9 2025, so Mar 8 midnight to Mar 10
	// midnight is only 47 hours. That span is still a two-day gap and must
	// reset the streak.
	userID := uuid.New()
	repo := &fakeStreakRepo{state: &types.StreakState{
		UserID:        userID,
		StreakCount:   5,
		LongestStreak: 5,
		LastActiveDay: dayStartPtr(time.Date(2025, 3, 8, 9, 0, 0, 0, ny)),
	}}
	svc := NewStreakService(logger.NewNop(), repo, newFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, ny)))

	res, err := svc.CheckAndUpdate(context.Background(), userID)
	if err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}
	if res.Streak != 1 || !res.IsNewDay {
		t.Fatalf("streak=%d isNewDay=%v after two-day gap, want reset to 1", res.Streak, res.IsNewDay)
	}

	// A plain one-day gap whose second midnight follows the transition
	// still counts as consecutive.
	repo = &fakeStreakRepo{state: &types.StreakState{
		UserID:        userID,
		StreakCount:   5,
		LongestStreak: 5,
		LastActiveDay: dayStartPtr(time.Date(2025, 3, 9, 9, 0, 0, 0, ny)),
	}}
	svc = NewStreakService(logger.NewNop(), repo, newFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, ny)))

	res, err = svc.CheckAndUpdate(context.Background(), userID)
	if err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}
	if res.Streak != 6 || !res.IsNewDay {
		t.Fatalf("streak=%d isNewDay=%v after one-day gap, want increment to 6", res.Streak, res.IsNewDay)
	}
}

func TestCheckAndUpdateTracksLongestThroughReset(t *testing.T) {
	userID := uuid.New()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := &fakeStreakRepo{state: &types.StreakState{
		UserID:        userID,
		StreakCount:   9,
		LongestStreak: 9,
		LastActiveDay: dayStartPtr(start),
	}}
	// Three days later: the run is broken but the record stands.
	svc := NewStreakService(logger.NewNop(), repo, newFakeClock(start.AddDate(0, 0, 3)))

	res, err := svc.CheckAndUpdate(context.Background(), userID)
	if err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}
	if res.Streak != 1 || res.Longest != 9 {
		t.Fatalf("streak=%d longest=%d, want 1 and 9", res.Streak, res.Longest)
	}
	if repo.state.LongestStreak != 9 {
		t.Fatalf("persisted longest %d, want 9", repo.state.LongestStreak)
	}
}

func TestCheckAndUpdateMilestones(t *testing.T) {
	userID := uuid.New()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		prior    int
		wantBand types.MilestoneBand
	}{
		{prior: 6, wantBand: types.MilestoneWeekly},
		{prior: 29, wantBand: types.MilestoneMonthly},
		{prior: 99, wantBand: types.MilestoneCentury},
	}
	for _, tc := range cases {
		repo := &fakeStreakRepo{state: &types.StreakState{
			UserID:        userID,
			StreakCount:   tc.prior,
			LongestStreak: tc.prior,
			LastActiveDay: dayStartPtr(start),
		}}
		svc := NewStreakService(logger.NewNop(), repo, newFakeClock(start.AddDate(0, 0, 1)))

		res, err := svc.CheckAndUpdate(context.Background(), userID)
		if err != nil {
			t.Fatalf("CheckAndUpdate: %v", err)
		}
		if res.Milestone == nil {
			t.Fatalf("streak %d reached, expected a milestone", tc.prior+1)
		}
		if res.Milestone.Days != tc.prior+1 || res.Milestone.Band != tc.wantBand {
			t.Fatalf("milestone %+v, want days=%d band=%s", res.Milestone, tc.prior+1, tc.wantBand)
		}
	}

	// Ordinary days carry no milestone.
	repo := &fakeStreakRepo{state: &types.StreakState{
		UserID:        userID,
		StreakCount:   4,
		LongestStreak: 4,
		LastActiveDay: dayStartPtr(start),
	}}
	svc := NewStreakService(logger.NewNop(), repo, newFakeClock(start.AddDate(0, 0, 1)))
	res, err := svc.CheckAndUpdate(context.Background(), userID)
	if err != nil {
		t.Fatalf("CheckAndUpdate: %v", err)
	}
	if res.Milestone != nil {
		t.Fatalf("streak 5 produced milestone %+v", res.Milestone)
	}
}

func TestGetReturnsZeroStateForNewUser(t *testing.T) {
	userID := uuid.New()
	svc := NewStreakService(logger.NewNop(), &fakeStreakRepo{}, newFakeClock(time.Now()))

	state, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if state.StreakCount != 0 || state.UserID != userID {
		t.Fatalf("unexpected zero state: %+v", state)
	}
}

func dayStartPtr(at time.Time) *time.Time {
	d := timeutil.DayStart(at)
	return &d
}
