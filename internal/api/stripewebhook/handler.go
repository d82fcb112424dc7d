package stripewebhooks

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"tomaai-api/config"
	"tomaai-api/database"
	"tomaai-api/internal/app/metrics"
	"tomaai-api/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v75/webhook"
)

const maxBodyBytes = int64(1 << 20)

func StripeWebhook(c *gin.Context) {
	start := time.Now()
	eventType := "unknown"
	status := http.StatusOK
	defer func() {
		metrics.WebhookRequestsTotal.WithLabelValues(eventType, strconv.Itoa(status)).Inc()
		metrics.WebhookDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
	}()

	reply := func(code int, body gin.H) {
		status = code
		c.JSON(code, body)
	}

	endpointSecret := config.STRIPE_WEBHOOK_SECRET
	if endpointSecret == "" {
		log.Error().Msg("stripe webhook secret not configured")
		reply(http.StatusServiceUnavailable, gin.H{"error": "webhook not configured"})
		return
	}

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		reply(http.StatusBadRequest, gin.H{"error": "Error reading request body"})
		return
	}

	sigHeader := c.GetHeader("Stripe-Signature")
	if sigHeader == "" {
		reply(http.StatusBadRequest, gin.H{"error": "Missing Stripe-Signature header"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		sigHeader,
		endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		log.Warn().Err(err).Msg("stripe signature verification failed")
		reply(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}
	eventType = string(event.Type)

	logger := log.With().Str("event_id", event.ID).Str("event_type", eventType).Logger()

	done, err := alreadyProcessed(c.Request.Context(), database.DB, event.ID)
	if err != nil {
		logger.Error().Err(err).Msg("dedupe lookup failed")
		reply(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}
	if done {
		logger.Info().Msg("duplicate delivery acknowledged")
		reply(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}

	if billing.EventTypeFromStripe(eventType) == billing.EventUnknown {
		logger.Debug().Msg("ignoring unhandled event type")
		reply(http.StatusOK, gin.H{"received": true, "ignored": true})
		return
	}

	parsed, err := parseEvent(&event)
	if errors.Is(err, errMalformedEvent) {
		logger.Warn().Err(err).Msg("malformed event payload")
		reply(http.StatusBadRequest, gin.H{"error": "Malformed event payload"})
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to resolve event details")
		reply(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	if err := apply(c.Request.Context(), database.DB, parsed, time.Now()); err != nil {
		logger.Error().Err(err).Msg("failed to apply billing event")
		reply(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	reply(http.StatusOK, gin.H{"received": true})
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
