package generation

import (
	"context"
	"errors"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"tomaai-api/database"
	"tomaai-api/internal/app/http/middleware"
	"tomaai-api/internal/app/metrics"
	"tomaai-api/internal/domain/access"
	"tomaai-api/internal/domain/images"
	"tomaai-api/internal/domain/usage"
	"tomaai-api/internal/infra/imagegen"

	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
)

const (
	maxPromptLength = 1000
	defaultStyle    = "photorealistic"
	defaultAspect   = "1:1"
	defaultQuality  = "standard"
	defaultPageSize = 50
	maxPageSize     = 100
)

var qualities = map[string]bool{"standard": true, "high": true, "ultra": true}

var promptPolicy = bluemonday.StrictPolicy()

// cleanText drops markup from a prompt but keeps it plain text: the
// sanitizer entity-escapes, which would reach the provider verbatim.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(promptPolicy.Sanitize(s)))
}

// Provider renders images; set at boot. Timeout bounds one provider call.
var (
	Provider imagegen.Generator
	Timeout  = 60 * time.Second
)

func ListStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"styles":        imagegen.Styles(),
		"aspect_ratios": []string{"1:1", "16:9", "9:16", "4:3"},
		"qualities":     []string{"standard", "high", "ultra"},
	})
}

// Generate renders one image for the caller. It runs behind the entitlement
// gate; the cap is checked again when the image is recorded.
func Generate(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if msg := normalize(&req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	if v, ok := c.Get(middleware.DecisionKey); ok {
		if d, ok := v.(access.Decision); ok && req.Quality == "ultra" && !access.HasCapability(d.Capabilities, access.CapHD) {
			req.Quality = defaultQuality
		}
	}

	if Provider == nil {
		log.Error().Msg("image provider not configured")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image generation is not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), Timeout)
	defer cancel()

	start := time.Now()
	result, genErr := Provider.Generate(ctx, imagegen.Request{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Style:          req.Style,
		AspectRatio:    req.AspectRatio,
		Quality:        req.Quality,
	})
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	if errors.Is(genErr, imagegen.ErrNotConfigured) {
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image generation is not configured"})
		return
	}

	img := images.GeneratedImage{
		UserID:         userID,
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Style:          req.Style,
		AspectRatio:    req.AspectRatio,
		Quality:        req.Quality,
		ImageURL:       result.URL,
		Status:         images.StatusSucceeded,
	}
	if genErr != nil {
		log.Warn().Err(genErr).Uint("user_id", userID).Msg("image provider failed, serving sample")
		img.ImageURL = imagegen.SampleImage()
		img.Status = images.StatusFailed
		img.Fallback = true
	}

	// Persist even when the client already went away; the provider was paid.
	recordCtx, cancelRecord := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 10*time.Second)
	defer cancelRecord()

	now := time.Now()
	err := usage.RecordGeneration(recordCtx, database.DB, &img, now)
	switch {
	case errors.Is(err, usage.ErrAllowanceExhausted):
		metrics.GenerationsTotal.WithLabelValues("denied").Inc()
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error":   "upgrade_required",
			"message": "You have used all images included in your plan",
		})
		return
	case err != nil:
		metrics.GenerationsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Uint("user_id", userID).Msg("failed to record generated image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
		return
	}

	if !img.Fallback {
		copyCtx, cancelCopy := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 45*time.Second)
		keepCopy(copyCtx, &img)
		cancelCopy()
	}

	resp := GenerateResponse{
		Image:    toImageDTO(img),
		Status:   string(img.Status),
		Fallback: img.Fallback,
	}
	if d, _, err := usage.Evaluate(recordCtx, database.DB, userID, now); err == nil {
		resp.Entitlement = &d
	}

	if img.Fallback {
		metrics.GenerationsTotal.WithLabelValues("fallback").Inc()
		c.JSON(http.StatusOK, resp)
		return
	}
	metrics.GenerationsTotal.WithLabelValues("succeeded").Inc()
	c.JSON(http.StatusCreated, resp)
}

// normalize applies defaults and returns a validation message, empty if valid.
func normalize(req *GenerateRequest) string {
	req.Prompt = cleanText(req.Prompt)
	req.NegativePrompt = cleanText(req.NegativePrompt)
	if req.Prompt == "" {
		return "Prompt is required"
	}
	if utf8.RuneCountInString(req.Prompt) > maxPromptLength || utf8.RuneCountInString(req.NegativePrompt) > maxPromptLength {
		return "Prompt is too long"
	}

	if req.Style == "" {
		req.Style = defaultStyle
	}
	if !imagegen.IsKnownStyle(req.Style) {
		return "Unknown style"
	}
	if req.AspectRatio == "" {
		req.AspectRatio = defaultAspect
	}
	if !imagegen.IsKnownAspectRatio(req.AspectRatio) {
		return "Unsupported aspect ratio"
	}
	if req.Quality == "" {
		req.Quality = defaultQuality
	}
	if !qualities[req.Quality] {
		return "Unknown quality"
	}
	return ""
}

func ListImages(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit := queryInt(c, "limit", defaultPageSize)
	if limit > maxPageSize {
		limit = maxPageSize
	}
	offset := queryInt(c, "offset", 0)

	var rows []images.GeneratedImage
	if err := database.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		log.Error().Err(err).Uint("user_id", userID).Msg("list images failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load images"})
		return
	}

	out := make([]ImageDTO, 0, len(rows))
	for _, img := range rows {
		out = append(out, toImageDTO(img))
	}
	c.JSON(http.StatusOK, gin.H{"images": out, "limit": limit, "offset": offset})
}

func DeleteImage(c *gin.Context) {
	userID := c.GetUint("user_id")
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	imageID := c.Param("id")
	res := database.DB.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", imageID, userID).
		Delete(&images.GeneratedImage{})
	if res.Error != nil {
		log.Error().Err(res.Error).Uint("user_id", userID).Msg("delete image failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	// The row stays for usage counting; only the stored bytes go.
	dropCopy(c.Request.Context(), imageID)
	c.Status(http.StatusNoContent)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
