package billing

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"tomaai-api/config"
	"tomaai-api/database"
	"tomaai-api/internal/domain/plans"
	"tomaai-api/internal/domain/users"
	stripeinfra "tomaai-api/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type checkoutBody struct {
	PriceID string `json:"price_id"`
	Tier    string `json:"tier"`
}

// resolvePrice accepts either a price id or a tier id and returns the price
// together with the tier it unlocks.
func (b checkoutBody) resolvePrice() (string, string) {
	priceID := strings.TrimSpace(b.PriceID)
	if priceID == "" && plans.IsValid(b.Tier) {
		for _, d := range plans.All() {
			if d.ID == b.Tier {
				priceID = d.PriceID
			}
		}
	}
	if priceID == "" {
		return "", plans.TierFree
	}
	return priceID, plans.TierFromPriceID(priceID)
}

func loadUser(c *gin.Context) (users.User, bool) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return users.User{}, false
	}
	var user users.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return users.User{}, false
	}
	return user, true
}

func checkoutRequest(user users.User, priceID string, subscription bool) stripeinfra.CheckoutRequest {
	req := stripeinfra.CheckoutRequest{
		UserID:       fmt.Sprint(user.ID),
		Email:        user.EmailOrEmpty(),
		PriceID:      priceID,
		Subscription: subscription,
		SuccessURL:   config.APP_URL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:    config.APP_URL + "/pricing",
	}
	if user.StripeCustomerID != nil {
		req.CustomerID = *user.StripeCustomerID
	}
	if !subscription {
		req.CancelURL = config.APP_URL + "/cancel"
	}
	return req
}

// CreateCheckoutSession starts a subscription checkout with a 3-day trial.
func CreateCheckoutSession(c *gin.Context) {
	var body checkoutBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	priceID, tier := body.resolvePrice()
	if priceID == "" || tier == plans.TierFree {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or unknown price_id"})
		return
	}

	if !stripeinfra.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	user, ok := loadUser(c)
	if !ok {
		return
	}

	s, err := stripeinfra.NewCheckoutSession(checkoutRequest(user, priceID, true))
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Str("price_id", priceID).Msg("create checkout session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	log.Info().Uint("user_id", user.ID).Str("session_id", s.ID).Str("tier", tier).Msg("checkout session created")
	c.JSON(http.StatusOK, gin.H{"sessionId": s.ID, "url": s.URL})
}

// CreatePaymentSession starts a one-time payment checkout.
func CreatePaymentSession(c *gin.Context) {
	var body checkoutBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	priceID, _ := body.resolvePrice()
	if priceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required parameters"})
		return
	}

	if !stripeinfra.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	user, ok := loadUser(c)
	if !ok {
		return
	}
	if user.EmailOrEmpty() == "" && user.StripeCustomerID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email required before payment"})
		return
	}

	s, err := stripeinfra.NewCheckoutSession(checkoutRequest(user, priceID, false))
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Str("price_id", priceID).Msg("create payment session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessionId": s.ID, "url": s.URL})
}

func CreateBillingPortal(c *gin.Context) {
	if !stripeinfra.Configured() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
		return
	}

	user, ok := loadUser(c)
	if !ok {
		return
	}
	if user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "No Stripe customer yet (subscribe first)"})
		return
	}

	portal, err := stripeinfra.NewPortalSession(*user.StripeCustomerID, config.APP_URL+"/account")
	if err != nil {
		if errors.Is(err, stripeinfra.ErrNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Stripe key not configured"})
			return
		}
		log.Error().Err(err).Uint("user_id", user.ID).Msg("create billing portal session failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create billing portal session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": portal.URL})
}
