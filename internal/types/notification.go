package types

import (
	"time"

	"github.com/google/uuid"
)

// SelectedContent is one day's worth of notification body for a slot,
// produced by the notification selector.
type SelectedContent struct {
	Text            string     `json:"text"`
	SourceContentID *uuid.UUID `json:"source_content_id,omitempty"`
	BibleBookName   string     `json:"bible_book_name,omitempty"`
	BibleChapter    int        `json:"bible_chapter,omitempty"`
}

// NotificationRequest is the payload handed to the delivery platform. Each
// request carries its own absolute fire date; there are no recurrence rules.
type NotificationRequest struct {
	Identifier      string     `json:"identifier"`
	FireAt          time.Time  `json:"fire_at"`
	Title           string     `json:"title"`
	Subtitle        string     `json:"subtitle"`
	Body            string     `json:"body"`
	SourceContentID *uuid.UUID `json:"source_content_id,omitempty"`
	BibleBookName   string     `json:"bible_book_name,omitempty"`
	BibleChapter    int        `json:"bible_chapter,omitempty"`
}

type ScheduledNotification struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User      `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Identifier      string     `gorm:"column:identifier;not null" json:"identifier"`
	FireAt          time.Time  `gorm:"column:fire_at;not null;index" json:"fire_at"`
	Title           string     `gorm:"column:title;not null" json:"title"`
	Subtitle        string     `gorm:"column:subtitle" json:"subtitle"`
	Body            string     `gorm:"column:body;not null" json:"body"`
	SourceContentID *uuid.UUID `gorm:"type:uuid;column:source_content_id" json:"source_content_id,omitempty"`
	BibleBookName   string     `gorm:"column:bible_book_name" json:"bible_book_name,omitempty"`
	BibleChapter    int        `gorm:"column:bible_chapter" json:"bible_chapter,omitempty"`
	CreatedAt       time.Time  `gorm:"not null;default:now()" json:"created_at"`
}

func (ScheduledNotification) TableName() string { return "scheduled_notification" }
