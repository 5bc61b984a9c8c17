package models

import (
	"time"

	"github.com/google/uuid"
)

// EventInvite grants a user access to an invite-only event.
type EventInvite struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"-"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index" json:"eventId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (EventInvite) TableName() string {
	return "event_invites"
}
