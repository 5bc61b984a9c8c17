package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auralink/auralink-server/internal/helpers"
	"github.com/auralink/auralink-server/internal/models"
	"github.com/auralink/auralink-server/internal/participation"
)

type JoinEventRequest struct {
	TransactionCode string `json:"transactionCode" binding:"required"`
}

// JoinEvent submits a join request for the caller. Free-for-all events seat
// or waitlist immediately; approval-gated events leave the request pending
// for the organizer.
func JoinEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	var req JoinEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Transaction code is required.")
		return
	}

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

	svc := participation.NewService(gormDB)
	request, waitlisted, err := svc.Submit(c.Request.Context(), eventID, userID.(uuid.UUID), req.TransactionCode)
	if err != nil {
		respondLifecycleError(c, err, "Failed to submit join request.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    joinMessage(request.Status, waitlisted),
		"waitlisted": waitlisted,
		"request":    request,
	})
}

// LeaveEvent cancels the caller's participation and promotes the waitlist
// head into the freed slot.
func LeaveEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

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

	svc := participation.NewService(gormDB)
	promoted, err := svc.Leave(c.Request.Context(), eventID, userID.(uuid.UUID))
	if err != nil {
		respondLifecycleError(c, err, "Failed to leave event.")
		return
	}

	response := gin.H{"message": "Participation cancelled."}
	if promoted != nil {
		response["promoted"] = promoted
	}
	c.JSON(http.StatusOK, response)
}

func ApproveRequest(c *gin.Context) {
	decideRequest(c, true)
}

func RejectRequest(c *gin.Context) {
	decideRequest(c, false)
}

func decideRequest(c *gin.Context, approve bool) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}
	requestID, err := uuid.Parse(c.Param("requestId"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request ID.")
		return
	}

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

	svc := participation.NewService(gormDB)
	if approve {
		err = svc.Approve(c.Request.Context(), userID.(uuid.UUID), eventID, requestID)
	} else {
		err = svc.Reject(c.Request.Context(), userID.(uuid.UUID), eventID, requestID)
	}
	if err != nil {
		if approve {
			respondLifecycleError(c, err, "Failed to approve request.")
		} else {
			respondLifecycleError(c, err, "Failed to reject request.")
		}
		return
	}

	if approve {
		c.JSON(http.StatusOK, gin.H{"message": "Join request approved."})
	} else {
		c.JSON(http.StatusOK, gin.H{"message": "Join request rejected."})
	}
}

// ListMyEventsRequests returns pending join requests across every event the
// caller organizes, the shape the dashboard consumes.
func ListMyEventsRequests(c *gin.Context) {
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

	svc := participation.NewService(gormDB)
	requests, err := svc.PendingForOrganizer(c.Request.Context(), userID.(uuid.UUID))
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving join requests.")
		return
	}

	items := make([]gin.H, 0, len(requests))
	for _, req := range requests {
		item := gin.H{
			"requestId":       req.ID,
			"transactionCode": req.TransactionCode,
			"requestedAt":     req.RequestedAt,
		}
		if req.Event != nil {
			item["event"] = gin.H{
				"_id":       req.Event.ID,
				"title":     req.Event.Title,
				"startDate": req.Event.StartDate,
				"pricing":   req.Event.Pricing,
			}
		}
		if req.User != nil {
			item["user"] = gin.H{
				"_id":      req.User.ID,
				"username": req.User.Username,
				"avatar":   req.User.Avatar,
				"email":    req.User.Email,
			}
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, items)
}

func joinMessage(status string, waitlisted bool) string {
	switch {
	case waitlisted:
		return "Event is full. You have been added to the waitlist."
	case status == models.RequestStatusPending:
		return "Join request submitted, awaiting organizer approval."
	case status == models.RequestStatusApproved:
		return "You have joined the event."
	default:
		return "Join request recorded."
	}
}

// respondLifecycleError maps the participation error taxonomy onto HTTP
// statuses so the client can tell a full event from a forbidden action.
func respondLifecycleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, participation.ErrNotFound):
		helpers.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, participation.ErrForbidden):
		helpers.RespondWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, participation.ErrCapacityExceeded),
		errors.Is(err, participation.ErrDuplicateRequest),
		errors.Is(err, participation.ErrInvalidState):
		helpers.RespondWithError(c, http.StatusConflict, err.Error())
	default:
		helpers.RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}
