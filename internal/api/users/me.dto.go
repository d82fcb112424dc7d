package users

import (
	"time"

	"tomaai-api/internal/domain/access"
)

type MeResponse struct {
	User        UserDTO        `json:"user"`
	Billing     BillingDTO     `json:"billing"`
	Entitlement EntitlementDTO `json:"entitlement"`
}

/* ---------- USER ---------- */

type UserDTO struct {
	ID             uint    `json:"id"`
	Email          *string `json:"email"`
	Name           string  `json:"name"`
	Role           string  `json:"role"`
	IsGuest        bool    `json:"is_guest"`
	EmailCollected bool    `json:"email_collected"`
}

/* ---------- BILLING ---------- */

type BillingDTO struct {
	Plan   PlanDTO   `json:"plan"`
	Status string    `json:"status"`
	Trial  *TrialDTO `json:"trial"`
}

type PlanDTO struct {
	Key       string           `json:"key"`
	Name      string           `json:"name"`
	Period    string           `json:"period"`
	PriceUSD  float64          `json:"price_usd"`
	Allowance access.Remaining `json:"allowance"`
}

type TrialDTO struct {
	EndsAt   *time.Time `json:"ends_at"`
	Active   bool       `json:"active"`
	DaysLeft int        `json:"days_left"`
}

/* ---------- ENTITLEMENT ---------- */

type EntitlementDTO struct {
	Allowed       bool             `json:"allowed"`
	Remaining     access.Remaining `json:"remaining"`
	ImagesUsed    int64            `json:"images_used"`
	EmailRequired bool             `json:"email_required"`
	Reason        string           `json:"reason,omitempty"`
	Capabilities  []string         `json:"capabilities"`
}
