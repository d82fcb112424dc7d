package users

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"tomaai-api/database"
	"tomaai-api/internal/api/auth"
	"tomaai-api/internal/domain/usage"
	"tomaai-api/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func GetCurrentUser(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	now := time.Now()
	decision, user, err := usage.Evaluate(c.Request.Context(), database.DB, userID, now)
	if errors.Is(err, usage.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("load current user failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, BuildMeResponse(now, user, decision))
}

// GetEntitlement answers whether the caller may generate one more image.
func GetEntitlement(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	decision, _, err := usage.Evaluate(c.Request.Context(), database.DB, userID, time.Now())
	if errors.Is(err, usage.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("entitlement evaluation failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, BuildEntitlementDTO(decision))
}

// CollectEmail stores the email a guest leaves to unlock further images.
func CollectEmail(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var body struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if !auth.IsEmailValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	var user users.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if user.Email != nil && *user.Email != email {
		c.JSON(http.StatusConflict, gin.H{"error": "Account already has an email"})
		return
	}

	var taken int64
	if err := database.DB.Model(&users.User{}).Where("email = ? AND id <> ?", email, userID).Count(&taken).Error; err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		return
	}
	if taken > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered, please log in"})
		return
	}

	if err := database.DB.Model(&user).Updates(map[string]interface{}{
		"email":           email,
		"email_collected": true,
	}).Error; err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("collect email failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save email"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email saved", "email_collected": true})
}
