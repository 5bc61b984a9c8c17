package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// JoinRequest is append-only history: a row never changes status more than once.
type JoinRequest struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primary_key" json:"requestId"`
	EventID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"eventId"`
	Event           *Event         `gorm:"foreignKey:EventID" json:"event,omitempty"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"userId"`
	User            *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TransactionCode string         `gorm:"not null" json:"transactionCode"`
	Status          string         `gorm:"not null;default:'pending';index" json:"status"`
	RequestedAt     time.Time      `gorm:"not null" json:"requestedAt"`
	DecidedAt       *time.Time     `json:"decidedAt,omitempty"`
	CreatedAt       time.Time      `json:"-"`
	UpdatedAt       time.Time      `json:"-"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
