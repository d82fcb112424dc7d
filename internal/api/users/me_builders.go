package users

import (
	"time"

	"tomaai-api/internal/domain/access"
	"tomaai-api/internal/domain/plans"
	"tomaai-api/internal/domain/users"
)

func BuildPlanDTO(tier string) PlanDTO {
	def := plans.Lookup(tier)
	allowance := access.Remaining{Count: def.Allowance}
	if def.IsUnlimited() {
		allowance = access.UnlimitedRemaining()
	}
	return PlanDTO{
		Key:       def.ID,
		Name:      def.Name,
		Period:    def.Period,
		PriceUSD:  def.PriceUSD,
		Allowance: allowance,
	}
}

func BuildTrialDTO(now time.Time, end *time.Time) *TrialDTO {
	if end == nil {
		return nil
	}

	active := access.IsTrialActive(end, now)
	daysLeft := 0
	if active {
		// partial days count as a full day left
		daysLeft = int((end.Sub(now) + 24*time.Hour - 1) / (24 * time.Hour))
	}

	return &TrialDTO{
		EndsAt:   end,
		Active:   active,
		DaysLeft: daysLeft,
	}
}

func BuildEntitlementDTO(d access.Decision) EntitlementDTO {
	caps := d.Capabilities
	if caps == nil {
		caps = []string{}
	}
	return EntitlementDTO{
		Allowed:       d.Allowed,
		Remaining:     d.Remaining,
		ImagesUsed:    d.ImagesUsed,
		EmailRequired: d.EmailRequired,
		Reason:        string(d.Reason),
		Capabilities:  caps,
	}
}

func BuildMeResponse(now time.Time, u users.User, d access.Decision) MeResponse {
	return MeResponse{
		User: UserDTO{
			ID:             u.ID,
			Email:          u.Email,
			Name:           u.Name,
			Role:           u.Role,
			IsGuest:        u.IsGuest,
			EmailCollected: u.EmailCollected,
		},
		Billing: BillingDTO{
			Plan:   BuildPlanDTO(u.Tier),
			Status: u.SubscriptionStatus,
			Trial:  BuildTrialDTO(now, u.TrialEndsAt),
		},
		Entitlement: BuildEntitlementDTO(d),
	}
}
