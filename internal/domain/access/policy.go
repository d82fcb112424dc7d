package access

import (
	"time"

	"tomaai-api/internal/domain/plans"
	"tomaai-api/internal/domain/users"
)

// Decision is the outcome of evaluating one account at one instant.
type Decision struct {
	Allowed       bool       `json:"allowed"`
	Remaining     Remaining  `json:"remaining"`
	Tier          string     `json:"tier"`
	Status        string     `json:"status"`
	ImagesUsed    int64      `json:"images_used"`
	TrialActive   bool       `json:"trial_active"`
	TrialEndsAt   *time.Time `json:"trial_ends_at,omitempty"`
	EmailRequired bool       `json:"email_required"`
	Reason        Reason     `json:"reason,omitempty"`
	Capabilities  []string   `json:"capabilities"`
}

// Evaluate combines the allowance check with the email-collection gate:
// accounts on the free tier that already used an image must leave an email
// before the next one.
func Evaluate(now time.Time, u users.User, imagesUsed int64) Decision {
	tier := plans.Lookup(u.Tier).ID
	d := Decision{
		Tier:        tier,
		Status:      u.SubscriptionStatus,
		ImagesUsed:  imagesUsed,
		Remaining:   RemainingFor(tier, imagesUsed),
		TrialActive: IsTrialActive(u.TrialEndsAt, now),
		TrialEndsAt: u.TrialEndsAt,
	}

	d.Allowed = CanGenerate(tier, imagesUsed, u.TrialEndsAt, now)
	if !d.Allowed {
		d.Reason = ReasonLimitReached
	}

	if tier == plans.TierFree && imagesUsed >= 1 && !u.EmailCollected {
		d.EmailRequired = true
		if d.Allowed {
			d.Allowed = false
			d.Reason = ReasonEmailRequired
		}
	}

	d.Capabilities = CapabilitiesFor(tier, d.Allowed)
	return d
}

// Denied is the fail-closed decision used when the inputs cannot be read.
func Denied() Decision {
	return Decision{
		Tier:         plans.TierFree,
		Reason:       ReasonUnavailable,
		Capabilities: []string{},
	}
}
