package types

import (
	"time"

	"github.com/google/uuid"
)

type StreakState struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User          *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	StreakCount   int        `gorm:"column:streak_count;not null;default:0" json:"streak_count"`
	LongestStreak int        `gorm:"column:longest_streak;not null;default:0" json:"longest_streak"`
	LastActiveDay *time.Time `gorm:"column:last_active_day" json:"last_active_day,omitempty"`
	CreatedAt     time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (StreakState) TableName() string { return "streak_state" }

type MilestoneBand string

const (
	MilestoneWeekly  MilestoneBand = "weekly"
	MilestoneMonthly MilestoneBand = "monthly"
	MilestoneCentury MilestoneBand = "century"
	MilestoneYearly  MilestoneBand = "yearly"
	MilestoneEpic    MilestoneBand = "epic"
)

type Milestone struct {
	Days int           `json:"days"`
	Band MilestoneBand `json:"band"`
}

type StreakResult struct {
	Streak    int        `json:"streak"`
	Longest   int        `json:"longest"`
	IsNewDay  bool       `json:"is_new_day"`
	Milestone *Milestone `json:"milestone,omitempty"`
}
