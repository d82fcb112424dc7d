package billing

import (
	"time"

	"tomaai-api/internal/domain/users"
)

// Payment is written once per completed checkout session.
type Payment struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	UserID               uint       `gorm:"index" json:"user_id"`
	User                 users.User `json:"-"`
	StripeSessionID      string     `gorm:"uniqueIndex" json:"stripe_session_id"`
	StripeSubscriptionID *string    `json:"stripe_subscription_id,omitempty"`
	Mode                 string     `gorm:"type:varchar(20)" json:"mode"` // subscription | payment
	Tier                 string     `gorm:"type:varchar(20)" json:"tier"`
	PriceID              string     `json:"price_id"`
	Amount               float64    `json:"amount"`
	Currency             string     `gorm:"type:varchar(3)" json:"currency"`
	Status               string     `json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
}
