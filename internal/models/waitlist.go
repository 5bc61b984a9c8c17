package models

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistEntry ordering is FIFO by EnqueuedAt.
type WaitlistEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"-"`
	EventID    uuid.UUID `gorm:"type:uuid;not null;index" json:"eventId"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	EnqueuedAt time.Time `gorm:"not null;index" json:"enqueuedAt"`
	CreatedAt  time.Time `json:"-"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist_entries"
}
