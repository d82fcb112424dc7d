package billing

import (
	"net/http"

	stripeinfra "tomaai-api/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// CancelSubscription cancels the caller's subscription at Stripe. The
// account is downgraded when customer.subscription.deleted arrives, not here.
func CancelSubscription(c *gin.Context) {
	if !stripeinfra.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	user, ok := loadUser(c)
	if !ok {
		return
	}
	if user.SubscriptionID == nil || *user.SubscriptionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No active subscription"})
		return
	}

	sub, err := stripeinfra.CancelSubscription(*user.SubscriptionID)
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Str("subscription_id", *user.SubscriptionID).Msg("cancel subscription failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel subscription"})
		return
	}

	log.Info().Uint("user_id", user.ID).Str("subscription_id", sub.ID).Msg("subscription cancelled at stripe")
	c.JSON(http.StatusOK, gin.H{
		"message":         "Subscription cancelled",
		"subscription_id": sub.ID,
		"status":          string(sub.Status),
	})
}
