package middleware

import (
	"errors"
	"net/http"
	"time"

	"tomaai-api/database"
	"tomaai-api/internal/app/metrics"
	"tomaai-api/internal/domain/access"
	"tomaai-api/internal/domain/usage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const DecisionKey = "entitlement_decision"

// RequireEntitlement lets the request through only when the caller may
// generate one more image. Storage failures deny with 503.
func RequireEntitlement() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("user_id")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		decision, _, err := usage.Evaluate(c.Request.Context(), database.DB, userID, time.Now())
		if errors.Is(err, usage.ErrUserNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
			return
		}
		if err != nil {
			log.Error().Err(err).Uint("user_id", userID).Msg("entitlement evaluation failed")
			metrics.EntitlementDenials.WithLabelValues(string(access.ReasonUnavailable)).Inc()
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
			return
		}

		if !decision.Allowed {
			metrics.EntitlementDenials.WithLabelValues(string(decision.Reason)).Inc()
			if decision.Reason == access.ReasonEmailRequired {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":       "email_required",
					"message":     "Leave your email to keep generating images",
					"entitlement": decision,
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":       "upgrade_required",
				"message":     "You have used all images included in your plan",
				"entitlement": decision,
			})
			return
		}

		c.Set(DecisionKey, decision)
		c.Next()
	}
}
