package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UserProfile struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User           *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	FaithLevel     FaithLevel     `gorm:"column:faith_level;not null;default:'justCurious'" json:"faith_level"`
	LifeSeasons    datatypes.JSON `gorm:"type:jsonb;column:life_seasons" json:"life_seasons"`
	Burdens        datatypes.JSON `gorm:"type:jsonb;column:burdens" json:"burdens"`
	IsPro          bool           `gorm:"column:is_pro;not null;default:false" json:"is_pro"`
	PreferredSlots datatypes.JSON `gorm:"type:jsonb;column:preferred_slots" json:"preferred_slots"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserProfile) TableName() string { return "user_profile" }

// ProfileSnapshot is the read-only projection the ranking engine works
// against. It is built once per call and never written back.
type ProfileSnapshot struct {
	UserID         uuid.UUID
	FirstName      string
	FaithLevel     FaithLevel
	LifeSeasons    []string
	Burdens        []string
	IsPro          bool
	PreferredSlots []TimeSlot
}

func (p *UserProfile) Snapshot(firstName string) ProfileSnapshot {
	rawSlots := decodeStrings(p.PreferredSlots)
	slots := make([]TimeSlot, 0, len(rawSlots))
	for _, s := range rawSlots {
		slots = append(slots, TimeSlot(s))
	}
	return ProfileSnapshot{
		UserID:         p.UserID,
		FirstName:      firstName,
		FaithLevel:     p.FaithLevel,
		LifeSeasons:    decodeStrings(p.LifeSeasons),
		Burdens:        decodeStrings(p.Burdens),
		IsPro:          p.IsPro,
		PreferredSlots: slots,
	}
}
