package plans

import "strings"

// Tier constants (single source of truth)
const (
	TierFree       = "free"
	TierStarter    = "starter"
	TierPro        = "pro"
	TierEnterprise = "enterprise"
)

// Unlimited is the allowance sentinel for tiers without a cap.
const Unlimited = -1

const (
	PeriodLifetime = "lifetime"
	PeriodMonthly  = "monthly"
)

// IsValid reports whether tier is one of the known tier ids, exact match only.
func IsValid(tier string) bool {
	switch tier {
	case TierFree, TierStarter, TierPro, TierEnterprise:
		return true
	}
	return false
}

// PriceIDs maps configured Stripe price ids to tiers. Set at boot from config.
var PriceIDs = map[string]string{}

// ConfigurePriceIDs registers the Stripe price ids of the paid tiers.
// Empty ids are skipped.
func ConfigurePriceIDs(starter, pro, enterprise string) {
	ids := map[string]string{}
	for id, tier := range map[string]string{starter: TierStarter, pro: TierPro, enterprise: TierEnterprise} {
		if strings.TrimSpace(id) != "" {
			ids[id] = tier
		}
	}
	PriceIDs = ids
}

// TierFromPriceID resolves a purchased price id to a tier. Configured ids win;
// otherwise the id is matched by case-sensitive substring so ids like
// "price_pro_monthly" still resolve while random Stripe ids ("price_1PRoX...")
// do not. Anything else is free.
func TierFromPriceID(priceID string) string {
	if priceID == "" {
		return TierFree
	}
	if tier, ok := PriceIDs[priceID]; ok {
		return tier
	}

	switch {
	case strings.Contains(priceID, TierStarter):
		return TierStarter
	case strings.Contains(priceID, TierPro):
		return TierPro
	case strings.Contains(priceID, TierEnterprise):
		return TierEnterprise
	default:
		return TierFree
	}
}
