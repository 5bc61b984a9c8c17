package models

import (
	"time"

	"github.com/google/uuid"
)

// EventParticipant rows mirror capacity_current: the row count for an event
// always equals the counter on the event itself.
type EventParticipant struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"-"`
	EventID   uuid.UUID `gorm:"type:uuid;not null;index" json:"eventId"`
	Event     *Event    `gorm:"foreignKey:EventID" json:"event,omitempty"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CheckedIn bool      `gorm:"not null;default:false" json:"checkedIn"`
	JoinedAt  time.Time `gorm:"not null" json:"joinedAt"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (EventParticipant) TableName() string {
	return "event_participants"
}
