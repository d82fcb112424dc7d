package users

import "time"

// Subscription status values of the entitlement record.
const (
	StatusInactive  = "inactive"
	StatusActive    = "active"
	StatusTrialing  = "trialing"
	StatusCancelled = "cancelled"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `json:"name"`
	Email    *string `gorm:"uniqueIndex:idx_users_email" json:"email"`
	Password *string `json:"-"`
	Role     string  `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	IsGuest  bool    `gorm:"not null;default:false" json:"is_guest"`

	// Entitlement record
	Tier               string     `gorm:"type:varchar(20);not null;default:'free'" json:"tier"`
	SubscriptionStatus string     `gorm:"column:subscription_status;type:varchar(20);not null;default:'inactive'" json:"subscription_status"`
	TrialEndsAt        *time.Time `gorm:"column:trial_ends_at" json:"trial_ends_at"`
	EmailCollected     bool       `gorm:"not null;default:false" json:"email_collected"`

	SubscriptionID   *string `gorm:"column:subscription_id;index:idx_users_subscription_id" json:"-"`
	StripeCustomerID *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_users_stripe_customer_id" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmailOrEmpty is the account email, empty for guests that never gave one.
func (u User) EmailOrEmpty() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
