package admin

import (
	"errors"
	"net/http"
	"time"

	"tomaai-api/database"
	"tomaai-api/internal/domain/billing"
	"tomaai-api/internal/domain/images"
	"tomaai-api/internal/domain/usage"
	"tomaai-api/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type AdminUser struct {
	ID                 uint       `json:"id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	Role               string     `json:"role"`
	IsGuest            bool       `json:"is_guest"`
	Tier               string     `json:"tier"`
	SubscriptionStatus string     `json:"subscription_status"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	StripeCustomerID   *string    `json:"stripe_customer_id,omitempty"`
	StripeSubID        *string    `json:"stripe_subscription_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type AdminPayment struct {
	ID        uint    `json:"id"`
	Email     string  `json:"email"`
	Tier      string  `json:"tier"`
	Mode      string  `json:"mode"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Status    string  `json:"status"`
	SessionID string  `json:"session_id"`
	CreatedAt string  `json:"created_at"`
}

type AdminStats struct {
	TotalUsers      int64            `json:"total_users"`
	GuestUsers      int64            `json:"guest_users"`
	TotalRevenue    float64          `json:"total_revenue"`
	RecentRevenue   float64          `json:"recent_revenue"`
	ImagesGenerated int64            `json:"images_generated"`
	FallbackImages  int64            `json:"fallback_images"`
	UsersPerTier    map[string]int64 `json:"users_per_tier"`
}

func toAdminUser(u users.User) AdminUser {
	return AdminUser{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.EmailOrEmpty(),
		Role:               u.Role,
		IsGuest:            u.IsGuest,
		Tier:               u.Tier,
		SubscriptionStatus: u.SubscriptionStatus,
		TrialEndsAt:        u.TrialEndsAt,
		StripeCustomerID:   u.StripeCustomerID,
		StripeSubID:        u.SubscriptionID,
		CreatedAt:          u.CreatedAt,
	}
}

func ListAllUsers(c *gin.Context) {
	var all []users.User
	if err := database.DB.Order("created_at DESC").Find(&all).Error; err != nil {
		log.Error().Err(err).Msg("admin: load users failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	out := make([]AdminUser, 0, len(all))
	for _, u := range all {
		out = append(out, toAdminUser(u))
	}
	c.JSON(http.StatusOK, out)
}

func ListAllPayments(c *gin.Context) {
	var payments []billing.Payment
	if err := database.DB.Preload("User").Order("created_at DESC").Find(&payments).Error; err != nil {
		log.Error().Err(err).Msg("admin: load payments failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	out := make([]AdminPayment, 0, len(payments))
	for _, p := range payments {
		out = append(out, AdminPayment{
			ID:        p.ID,
			Email:     p.User.EmailOrEmpty(),
			Tier:      p.Tier,
			Mode:      p.Mode,
			Amount:    p.Amount,
			Currency:  p.Currency,
			Status:    p.Status,
			SessionID: p.StripeSessionID,
			CreatedAt: p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	c.JSON(http.StatusOK, out)
}

func GetAdminStats(c *gin.Context) {
	db := database.DB.WithContext(c.Request.Context())
	stats := AdminStats{UsersPerTier: map[string]int64{}}
	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)

	type tierCount struct {
		Tier  string
		Count int64
	}
	var counts []tierCount

	queries := []struct {
		name string
		run  func() error
	}{
		{"total users", func() error { return db.Model(&users.User{}).Count(&stats.TotalUsers).Error }},
		{"guest users", func() error {
			return db.Model(&users.User{}).Where("is_guest = ?", true).Count(&stats.GuestUsers).Error
		}},
		{"total revenue", func() error {
			return db.Model(&billing.Payment{}).Where("status = ?", "paid").
				Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalRevenue).Error
		}},
		{"recent revenue", func() error {
			return db.Model(&billing.Payment{}).
				Where("status = ? AND created_at >= ?", "paid", thirtyDaysAgo).
				Select("COALESCE(SUM(amount), 0)").Scan(&stats.RecentRevenue).Error
		}},
		{"images generated", func() error {
			return db.Unscoped().Model(&images.GeneratedImage{}).Where("fallback = ?", false).Count(&stats.ImagesGenerated).Error
		}},
		{"fallback images", func() error {
			return db.Unscoped().Model(&images.GeneratedImage{}).Where("fallback = ?", true).Count(&stats.FallbackImages).Error
		}},
		{"tier counts", func() error {
			return db.Model(&users.User{}).Select("tier, COUNT(id) as count").Group("tier").Scan(&counts).Error
		}},
	}
	for _, q := range queries {
		if err := q.run(); err != nil {
			log.Error().Err(err).Str("query", q.name).Msg("admin: stats query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
	}

	for _, tc := range counts {
		stats.UsersPerTier[tc.Tier] = tc.Count
	}
	c.JSON(http.StatusOK, stats)
}

// GetUserDetails shows one account with its live entitlement decision.
func GetUserDetails(c *gin.Context) {
	var user users.User
	if err := database.DB.First(&user, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user"})
		return
	}

	payments := []billing.Payment{}
	if err := database.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	decision, _, err := usage.Evaluate(c.Request.Context(), database.DB, user.ID, time.Now())
	if err != nil {
		log.Error().Err(err).Uint("user_id", user.ID).Msg("admin: evaluate failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to evaluate entitlement"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":        toAdminUser(user),
		"payments":    payments,
		"entitlement": decision,
	})
}
