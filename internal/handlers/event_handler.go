package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/auralink/auralink-server/internal/helpers"
	"github.com/auralink/auralink-server/internal/middleware"
	"github.com/auralink/auralink-server/internal/models"
)

var errCapacityBelowCurrent = errors.New("capacity cannot be reduced below the current participant count")

// eventListCacheKey caches the unfiltered first page only; writes drop it.
const eventListCacheKey = "events:list"

type LocationRequest struct {
	Name      string   `json:"name"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	State     string   `json:"state"`
	Country   string   `json:"country"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type PricingRequest struct {
	Type                string  `json:"type" binding:"omitempty,oneof=free paid"`
	Amount              float64 `json:"amount" binding:"omitempty,gte=0"`
	Currency            string  `json:"currency"`
	PaymentInstructions string  `json:"paymentInstructions"`
}

type EventRequest struct {
	Title            string          `json:"title" binding:"required,max=200"`
	Description      string          `json:"description" binding:"omitempty,max=2000"`
	Sport            string          `json:"sport" binding:"required"`
	EventType        string          `json:"eventType" binding:"omitempty,oneof=clinic tournament workshop bootcamp match training other"`
	StartDate        time.Time       `json:"startDate" binding:"required"`
	EndDate          time.Time       `json:"endDate" binding:"required"`
	TimeNote         string          `json:"time"`
	Location         LocationRequest `json:"location"`
	MaxCapacity      int             `json:"maxCapacity" binding:"required,gt=0"`
	Pricing          PricingRequest  `json:"pricing"`
	SkillLevel       string          `json:"skillLevel" binding:"omitempty,oneof=beginner intermediate advanced all"`
	Status           string          `json:"status" binding:"omitempty,oneof=draft published"`
	Visibility       string          `json:"visibility" binding:"omitempty,oneof=public private invite-only"`
	RequiresApproval bool            `json:"requiresApproval"`
}

func CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	if !req.EndDate.After(req.StartDate) && !req.EndDate.Equal(req.StartDate) {
		helpers.RespondWithError(c, http.StatusBadRequest, "End date must not be before start date.")
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

	event := models.Event{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		OrganizerID: userID.(uuid.UUID),
		Sport:       req.Sport,
		EventType:   defaultString(req.EventType, "other"),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		TimeNote:    req.TimeNote,
		Location: models.Location{
			Name:      req.Location.Name,
			Address:   req.Location.Address,
			City:      req.Location.City,
			State:     req.Location.State,
			Country:   req.Location.Country,
			Latitude:  req.Location.Latitude,
			Longitude: req.Location.Longitude,
		},
		Capacity: models.Capacity{Max: req.MaxCapacity},
		Pricing: models.Pricing{
			Type:                defaultString(req.Pricing.Type, models.PricingFree),
			Amount:              req.Pricing.Amount,
			Currency:            defaultString(req.Pricing.Currency, "USD"),
			PaymentInstructions: req.Pricing.PaymentInstructions,
		},
		SkillLevel:       defaultString(req.SkillLevel, "all"),
		Status:           defaultString(req.Status, models.EventStatusPublished),
		Visibility:       defaultString(req.Visibility, models.VisibilityPublic),
		RequiresApproval: req.RequiresApproval,
	}

	if err := gormDB.Create(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create event.")
		return
	}

	dropEventListCache(c)

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Event created successfully.",
		"event_id": event.ID,
	})
}

func GetEvent(c *gin.Context) {
	eventID := c.Param("id")

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Preload("Organizer").Preload("Participants.User").Where("id = ?", eventID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	c.JSON(http.StatusOK, event)
}

func ListEvents(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	page := c.DefaultQuery("page", "1")
	limit := c.DefaultQuery("limit", "10")

	sport := c.Query("sport")
	city := c.Query("city")
	status := c.DefaultQuery("status", models.EventStatusPublished)

	pageNum, err := helpers.StringToInt(page)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid page number.")
		return
	}

	limitNum, err := helpers.StringToInt(limit)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	cacheable := sport == "" && city == "" && status == models.EventStatusPublished &&
		pageNum == 1 && limitNum == 10
	store := middleware.GetCache(c)
	if cacheable && store.Enabled() {
		var cached gin.H
		if hit, err := store.GetJSON(c.Request.Context(), eventListCacheKey, &cached); err == nil && hit {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	query := gormDB.Model(&models.Event{}).Where("status = ?", status)
	if sport != "" {
		query = query.Where("sport = ?", sport)
	}
	if city != "" {
		query = query.Where("location_city = ?", city)
	}

	var totalCount int64
	query.Count(&totalCount)

	var events []models.Event
	offset := (pageNum - 1) * limitNum
	err = query.Preload("Organizer").Offset(offset).Limit(limitNum).Order("start_date ASC").Find(&events).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	response := gin.H{
		"events":      events,
		"total":       totalCount,
		"page":        pageNum,
		"limit":       limitNum,
		"total_pages": (totalCount + int64(limitNum) - 1) / int64(limitNum),
	}

	if cacheable && store.Enabled() {
		// Short TTL: the capacity counters in the list drift as people join,
		// so stale entries expire quickly without per-join invalidation.
		_ = store.SetJSON(c.Request.Context(), eventListCacheKey, response, 30*time.Second)
	}

	c.JSON(http.StatusOK, response)
}

func UpdateEvent(c *gin.Context) {
	eventID := c.Param("id")
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	// The update runs under the same row lock the participation service
	// takes, so a concurrent approve cannot raise capacity_current between
	// the shrink check and the write. The counter column itself is omitted
	// from the save: the participation service owns it.
	var event models.Event
	err := gormDB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND organizer_id = ?", eventID, userID).First(&event).Error; err != nil {
			return err
		}
		if req.MaxCapacity < event.Capacity.Current {
			return errCapacityBelowCurrent
		}
		applyEventUpdate(&event, req)
		return tx.Omit("capacity_current").Save(&event).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			helpers.RespondWithError(c, http.StatusForbidden, "Event not found or you don't have permission to update.")
		case errors.Is(err, errCapacityBelowCurrent):
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event.")
		}
		return
	}

	dropEventListCache(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully.",
		"event":   event,
	})
}

// DeleteEvent cancels an event. Rows are kept so past participants retain
// their history.
func DeleteEvent(c *gin.Context) {
	eventID := c.Param("id")
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

	result := gormDB.Model(&models.Event{}).
		Where("id = ? AND organizer_id = ? AND status NOT IN ?", eventID, userID,
			[]string{models.EventStatusCancelled, models.EventStatusCompleted}).
		Update("status", models.EventStatusCancelled)
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel event.")
		return
	}

	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusForbidden, "Event not found, already finished, or you don't have permission to cancel.")
		return
	}

	dropEventListCache(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Event cancelled successfully.",
	})
}

type InviteRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}

// InviteToEvent lets the organizer grant a user access to an invite-only event.
func InviteToEvent(c *gin.Context) {
	eventID := c.Param("id")
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var event models.Event
	if err := gormDB.Where("id = ? AND organizer_id = ?", eventID, userID).First(&event).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusForbidden, "Event not found or you don't have permission to invite.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding event.")
		return
	}

	var existing models.EventInvite
	if result := gormDB.Where("event_id = ? AND user_id = ?", event.ID, req.UserID).First(&existing); result.Error == nil {
		helpers.RespondWithError(c, http.StatusConflict, "User is already invited.")
		return
	}

	invite := models.EventInvite{EventID: event.ID, UserID: req.UserID}
	if err := gormDB.Create(&invite).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create invite.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User invited successfully."})
}

// applyEventUpdate copies request fields onto the event. Capacity.Current is
// deliberately untouched: only the participation lifecycle mutates it.
func applyEventUpdate(event *models.Event, req EventRequest) {
	event.Title = req.Title
	event.Description = req.Description
	event.Sport = req.Sport
	event.EventType = defaultString(req.EventType, event.EventType)
	event.StartDate = req.StartDate
	event.EndDate = req.EndDate
	event.TimeNote = req.TimeNote
	event.Location = models.Location{
		Name:      req.Location.Name,
		Address:   req.Location.Address,
		City:      req.Location.City,
		State:     req.Location.State,
		Country:   req.Location.Country,
		Latitude:  req.Location.Latitude,
		Longitude: req.Location.Longitude,
	}
	event.Capacity.Max = req.MaxCapacity
	event.Pricing = models.Pricing{
		Type:                defaultString(req.Pricing.Type, models.PricingFree),
		Amount:              req.Pricing.Amount,
		Currency:            defaultString(req.Pricing.Currency, "USD"),
		PaymentInstructions: req.Pricing.PaymentInstructions,
	}
	event.SkillLevel = defaultString(req.SkillLevel, event.SkillLevel)
	event.Visibility = defaultString(req.Visibility, event.Visibility)
	event.RequiresApproval = req.RequiresApproval
	if req.Status != "" {
		event.Status = req.Status
	}
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func dropEventListCache(c *gin.Context) {
	if store := middleware.GetCache(c); store.Enabled() {
		_ = store.Delete(c.Request.Context(), eventListCacheKey)
	}
}
