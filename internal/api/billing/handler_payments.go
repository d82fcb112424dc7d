package billing

import (
	"net/http"
	"strconv"

	"tomaai-api/database"
	"tomaai-api/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	defaultPaymentsPage = 20
	maxPaymentsPage     = 100
)

var paymentModes = map[string]bool{"subscription": true, "payment": true}

// GetPaymentHistory lists the caller's checkouts, newest first.
// Optional query: mode=subscription|payment, limit, offset.
func GetPaymentHistory(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	mode := c.Query("mode")
	if mode != "" && !paymentModes[mode] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode must be subscription or payment"})
		return
	}
	limit := pageParam(c, "limit", defaultPaymentsPage)
	if limit == 0 || limit > maxPaymentsPage {
		limit = maxPaymentsPage
	}
	offset := pageParam(c, "offset", 0)

	q := database.DB.WithContext(c.Request.Context()).
		Model(&billing.Payment{}).
		Where("user_id = ?", userID)
	if mode != "" {
		q = q.Where("mode = ?", mode)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("count payments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	payments := []billing.Payment{}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&payments).Error; err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("load payments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payments": payments,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func pageParam(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(fallback)))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
