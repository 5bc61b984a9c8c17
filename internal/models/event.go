package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EventStatusDraft     = "draft"
	EventStatusPublished = "published"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"

	VisibilityPublic     = "public"
	VisibilityPrivate    = "private"
	VisibilityInviteOnly = "invite-only"

	PricingFree = "free"
	PricingPaid = "paid"
)

type Location struct {
	Name      string   `json:"name,omitempty"`
	Address   string   `json:"address,omitempty"`
	City      string   `gorm:"index" json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `gorm:"index" json:"latitude,omitempty"`
	Longitude *float64 `gorm:"index" json:"longitude,omitempty"`
}

type Capacity struct {
	Max     int `gorm:"not null" json:"max"`
	Current int `gorm:"not null;default:0" json:"current"`
}

type Pricing struct {
	Type                string  `gorm:"not null;default:'free'" json:"type"`
	Amount              float64 `gorm:"not null;default:0" json:"amount"`
	Currency            string  `gorm:"not null;default:'USD'" json:"currency"`
	PaymentInstructions string  `json:"paymentInstructions,omitempty"`
}

type Event struct {
	ID               uuid.UUID          `gorm:"type:uuid;primary_key" json:"_id"`
	Title            string             `gorm:"not null" json:"title"`
	Description      string             `json:"description,omitempty"`
	OrganizerID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"organizerId"`
	Organizer        *User              `gorm:"foreignKey:OrganizerID" json:"organizer,omitempty"`
	Sport            string             `gorm:"not null;index" json:"sport"`
	EventType        string             `gorm:"not null;default:'other'" json:"eventType"`
	StartDate        time.Time          `gorm:"not null;index" json:"startDate"`
	EndDate          time.Time          `gorm:"not null" json:"endDate"`
	TimeNote         string             `json:"time,omitempty"`
	Location         Location           `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Capacity         Capacity           `gorm:"embedded;embeddedPrefix:capacity_" json:"capacity"`
	Pricing          Pricing            `gorm:"embedded;embeddedPrefix:pricing_" json:"pricing"`
	SkillLevel       string             `gorm:"not null;default:'all'" json:"skillLevel"`
	Status           string             `gorm:"not null;default:'published';index" json:"status"`
	Visibility       string             `gorm:"not null;default:'public'" json:"visibility"`
	RequiresApproval bool               `gorm:"not null;default:false" json:"requiresApproval"`
	Participants     []EventParticipant `gorm:"foreignKey:EventID" json:"participants,omitempty"`
	Waitlist         []WaitlistEntry    `gorm:"foreignKey:EventID" json:"waitlist,omitempty"`
	JoinRequests     []JoinRequest      `gorm:"foreignKey:EventID" json:"joinRequests,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}
