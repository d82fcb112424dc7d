package stripe

import (
	"strings"

	"tomaai-api/internal/domain/users"
)

// NormalizeStripeStatus maps a Stripe subscription status onto the account
// status values. Anything unrecognised is inactive.
func NormalizeStripeStatus(s string) string {
	switch strings.TrimSpace(s) {
	case "active":
		return users.StatusActive
	case "trialing":
		return users.StatusTrialing
	case "canceled", "incomplete_expired", "unpaid":
		return users.StatusCancelled
	default:
		return users.StatusInactive
	}
}
