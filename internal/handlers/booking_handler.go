package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"

	"github.com/auralink/auralink-server/internal/helpers"
	"github.com/auralink/auralink-server/internal/models"
)

// ListBookings returns the caller's confirmed participations with the event
// preloaded, upcoming first.
func ListBookings(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	limit := c.DefaultQuery("limit", "100")
	limitNum, err := helpers.StringToInt(limit)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	var bookings []models.EventParticipant
	err = gormDB.
		Joins("JOIN events ON events.id = event_participants.event_id").
		Where("event_participants.user_id = ?", userID).
		Preload("Event.Organizer").
		Order("events.start_date ASC").
		Limit(limitNum).
		Find(&bookings).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving bookings.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GenerateBookingQR renders a signed check-in code for the caller's
// participation in an event as a PNG QR image.
func GenerateBookingQR(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	eventID, err := uuid.Parse(c.Param("eventId"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var participant models.EventParticipant
	if err := gormDB.Where("event_id = ? AND user_id = ?", eventID, userID).First(&participant).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
		return
	}

	if participant.CheckedIn {
		helpers.RespondWithError(c, http.StatusForbidden, "Already checked in.")
		return
	}

	code := helpers.GenerateCheckInCode(eventID, userID.(uuid.UUID), os.Getenv("JWT_SECRET"))

	qrImage, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

type CheckInRequest struct {
	Code string `json:"code" binding:"required"`
}

// CheckInParticipant validates a scanned check-in code. Only the event's
// organizer may check people in, and a code works exactly once.
func CheckInParticipant(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	if !helpers.ValidateCheckInCode(req.Code, os.Getenv("JWT_SECRET")) {
		helpers.RespondWithError(c, http.StatusForbidden, "Invalid check-in code signature.")
		return
	}

	eventID, participantID, err := helpers.ParseCheckInCode(req.Code)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid check-in code format.")
		return
	}

	var event models.Event
	if err := gormDB.Where("id = ?", eventID).First(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}
	if event.OrganizerID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to check in participants for this event.")
		return
	}

	result := gormDB.Model(&models.EventParticipant{}).
		Where("event_id = ? AND user_id = ? AND checked_in = false", eventID, participantID).
		Update("checked_in", true)
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to check in participant.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusForbidden, "Participant not found or already checked in.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Participant checked in successfully.",
		"event":   gin.H{"_id": event.ID, "title": event.Title},
	})
}
