package access

import (
	"time"

	"tomaai-api/internal/domain/plans"
)

// TrialDuration is granted on every completed checkout.
const TrialDuration = 72 * time.Hour

// IsTrialActive reports whether trialEndsAt is set and strictly after now.
func IsTrialActive(trialEndsAt *time.Time, now time.Time) bool {
	return trialEndsAt != nil && trialEndsAt.After(now)
}

// CanGenerate decides whether one more generation is permitted. Reaching the
// allowance exactly denies; an active trial overrides the cap.
func CanGenerate(tier string, imagesUsed int64, trialEndsAt *time.Time, now time.Time) bool {
	def := plans.Lookup(tier)
	if def.IsUnlimited() {
		return true
	}
	if imagesUsed < int64(def.Allowance) {
		return true
	}
	return IsTrialActive(trialEndsAt, now)
}

// RemainingFor is max(0, allowance-used), or unlimited.
func RemainingFor(tier string, imagesUsed int64) Remaining {
	def := plans.Lookup(tier)
	if def.IsUnlimited() {
		return UnlimitedRemaining()
	}
	left := int64(def.Allowance) - imagesUsed
	if left < 0 {
		left = 0
	}
	return Remaining{Count: int(left)}
}
