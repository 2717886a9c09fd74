// Package timeutil holds the day and time-of-day bucketing shared by feed
// scoring, notification scheduling, and streak tracking. All three must
// agree on where a day starts, so the truncation lives in one place.
package timeutil

import (
	"math"
	"time"

	"github.com/quietwaters-app/quietwaters-backend/internal/types"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock { return systemClock{} }

// SlotForTime buckets a wall-clock time into the four fixed slots:
// 05:00-11:59 morning, 12:00-16:59 midday, 17:00-20:59 evening, else bedtime.
func SlotForTime(t time.Time) types.TimeSlot {
	switch h := t.Hour(); {
	case h >= 5 && h < 12:
		return types.SlotMorning
	case h >= 12 && h < 17:
		return types.SlotMidday
	case h >= 17 && h < 21:
		return types.SlotEvening
	default:
		return types.SlotBedtime
	}
}

// DayStart truncates to midnight in t's location.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two instants fall on the same calendar day in
// a's location.
func SameDay(a, b time.Time) bool {
	return DayStart(a).Equal(DayStart(b.In(a.Location())))
}

// DaysBetween counts whole calendar days from a to b (negative when b is
// earlier). Rounding absorbs DST transitions, where the midnight-to-midnight
// span is 23 or 25 hours rather than 24.
func DaysBetween(a, b time.Time) int {
	da := DayStart(a)
	db := DayStart(b.In(a.Location()))
	return int(math.Round(db.Sub(da).Hours() / 24))
}

// SlotFireTime returns the fixed delivery time for a slot on the given day:
// morning 07:00, midday 12:15, evening 19:00, bedtime 21:30.
func SlotFireTime(day time.Time, slot types.TimeSlot) time.Time {
	start := DayStart(day)
	switch slot {
	case types.SlotMorning:
		return start.Add(7 * time.Hour)
	case types.SlotMidday:
		return start.Add(12*time.Hour + 15*time.Minute)
	case types.SlotEvening:
		return start.Add(19 * time.Hour)
	default:
		return start.Add(21*time.Hour + 30*time.Minute)
	}
}
