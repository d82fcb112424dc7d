package routes

import (
	"net/http"

	"tomaai-api/config"
	adminapi "tomaai-api/internal/api/admin"
	authapi "tomaai-api/internal/api/auth"
	"tomaai-api/internal/api/billing"
	"tomaai-api/internal/api/generation"
	"tomaai-api/internal/api/plans"
	stripewebhooks "tomaai-api/internal/api/stripewebhook"
	"tomaai-api/internal/api/users"
	"tomaai-api/internal/app/http/middleware"
	userdomain "tomaai-api/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(r *gin.Engine, limiter *middleware.RateLimiter) {
	r.HandleMethodNotAllowed = true

	// Stripe signs the raw body; it must not pass through the sanitizer.
	r.POST("/webhook", stripewebhooks.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if config.MEDIA_DIR != "" {
		r.Static("/media", config.MEDIA_DIR)
	}

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/register", authapi.Register)
	public.POST("/login", authapi.Login)
	public.POST("/auth/guest", authapi.GuestSession)
	public.GET("/plans", plans.ListPlans)
	public.GET("/styles", generation.ListStyles)

	// Authenticated. Prompts are plain text sent to the provider; the
	// generation handler strips markup itself instead of HTML-escaping it.
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.POST("/generate", limiter.Handler(), middleware.RequireEntitlement(), generation.Generate)
	auth.GET("/images", generation.ListImages)
	auth.DELETE("/images/:id", generation.DeleteImage)

	account := auth.Group("/")
	account.Use(middleware.SanitizeAndCleanInputMiddleware())
	account.GET("/me", users.GetCurrentUser)
	account.GET("/entitlement", users.GetEntitlement)
	account.POST("/me/email", users.CollectEmail)
	account.POST("/change-password", authapi.ChangePassword)

	account.GET("/payments", billing.GetPaymentHistory)
	account.POST("/create-checkout-session", billing.CreateCheckoutSession)
	account.POST("/create-payment-session", billing.CreatePaymentSession)
	account.POST("/billing-portal", billing.CreateBillingPortal)
	account.POST("/cancel-subscription", billing.CancelSubscription)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole(userdomain.RoleAdmin))
	admin.GET("/users", adminapi.ListAllUsers)
	admin.GET("/users/:id", adminapi.GetUserDetails)
	admin.GET("/payments", adminapi.ListAllPayments)
	admin.GET("/stats", adminapi.GetAdminStats)
}
