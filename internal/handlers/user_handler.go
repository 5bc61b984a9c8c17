package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auralink/auralink-server/internal/helpers"
	"github.com/auralink/auralink-server/internal/models"
)

func GetProfile(c *gin.Context) {
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

	var user models.User
	if err := gormDB.Preload("Events").Where("id = ?", userID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving user.")
		return
	}

	c.JSON(http.StatusOK, user)
}

// GetUser returns a user's profile with the accounts they follow embedded,
// each flagged with whether the caller follows them too.
func GetUser(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	callerID, exists := c.Get("user_id")
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

	var user models.User
	if err := gormDB.Where("id = ?", targetID).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving user.")
		return
	}

	var following []models.User
	err = gormDB.
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", targetID).
		Order("users.username ASC").
		Find(&following).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving follow list.")
		return
	}

	var callerFollowees []uuid.UUID
	err = gormDB.Model(&models.Follow{}).
		Where("follower_id = ?", callerID).
		Pluck("followee_id", &callerFollowees).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving follow list.")
		return
	}
	followedByCaller := make(map[uuid.UUID]bool, len(callerFollowees))
	for _, id := range callerFollowees {
		followedByCaller[id] = true
	}

	followingItems := make([]gin.H, 0, len(following))
	for _, u := range following {
		followingItems = append(followingItems, gin.H{
			"_id":        u.ID,
			"username":   u.Username,
			"avatar":     u.Avatar,
			"bio":        u.Bio,
			"isFollowed": followedByCaller[u.ID],
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"_id":       user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"avatar":    user.Avatar,
		"bio":       user.Bio,
		"following": followingItems,
	})
}

// SearchUsers backs the global search overlay: substring match on username
// or email.
func SearchUsers(c *gin.Context) {
	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	search := c.Query("search")
	limit := c.DefaultQuery("limit", "20")
	limitNum, err := helpers.StringToInt(limit)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid limit.")
		return
	}

	query := gormDB.Model(&models.User{})
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ?", pattern, pattern)
	}

	var users []models.User
	if err := query.Order("username ASC").Limit(limitNum).Find(&users).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error searching users.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func FollowUser(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}
	if targetID == userID.(uuid.UUID) {
		helpers.RespondWithError(c, http.StatusBadRequest, "You cannot follow yourself.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var target models.User
	if err := gormDB.Where("id = ?", targetID).First(&target).Error; err != nil {
		helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
		return
	}

	var existing models.Follow
	if result := gormDB.Where("follower_id = ? AND followee_id = ?", userID, targetID).First(&existing); result.Error == nil {
		helpers.RespondWithError(c, http.StatusConflict, "Already following this user.")
		return
	}

	follow := models.Follow{FollowerID: userID.(uuid.UUID), FolloweeID: targetID}
	if err := gormDB.Create(&follow).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to follow user.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Now following " + target.Username + "."})
}

func UnfollowUser(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	result := gormDB.Where("follower_id = ? AND followee_id = ?", userID, targetID).Delete(&models.Follow{})
	if result.Error != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to unfollow user.")
		return
	}
	if result.RowsAffected == 0 {
		helpers.RespondWithError(c, http.StatusNotFound, "You are not following this user.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed successfully."})
}

func ListFollowing(c *gin.Context) {
	listFollowEdges(c, "follower_id", "followee_id", "following")
}

func ListFollowers(c *gin.Context) {
	listFollowEdges(c, "followee_id", "follower_id", "followers")
}

func listFollowEdges(c *gin.Context, matchColumn, selectColumn, key string) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	db, exists := c.Get("db")
	if !exists {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}
	gormDB := db.(*gorm.DB)

	var users []models.User
	err = gormDB.
		Joins("JOIN follows ON follows."+selectColumn+" = users.id").
		Where("follows."+matchColumn+" = ?", targetID).
		Order("users.username ASC").
		Find(&users).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving follow list.")
		return
	}

	c.JSON(http.StatusOK, gin.H{key: users})
}
