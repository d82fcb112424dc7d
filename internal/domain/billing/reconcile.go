package billing

import (
	"time"

	"tomaai-api/internal/domain/access"
	"tomaai-api/internal/domain/plans"
	"tomaai-api/internal/domain/users"
)

type EventType string

const (
	EventCheckoutCompleted   EventType = "checkout_completed"
	EventSubscriptionCreated EventType = "subscription_created"
	EventSubscriptionUpdated EventType = "subscription_updated"
	EventSubscriptionDeleted EventType = "subscription_deleted"
	EventInvoicePaid         EventType = "invoice_paid"
	EventInvoiceFailed       EventType = "invoice_failed"
	EventUnknown             EventType = "unknown"
)

// EventTypeFromStripe maps a Stripe event type to the billing event it carries.
func EventTypeFromStripe(t string) EventType {
	switch t {
	case "checkout.session.completed":
		return EventCheckoutCompleted
	case "customer.subscription.created":
		return EventSubscriptionCreated
	case "customer.subscription.updated":
		return EventSubscriptionUpdated
	case "customer.subscription.deleted":
		return EventSubscriptionDeleted
	case "invoice.payment_succeeded", "invoice.paid":
		return EventInvoicePaid
	case "invoice.payment_failed":
		return EventInvoiceFailed
	default:
		return EventUnknown
	}
}

// Event is a verified billing event reduced to what reconciliation needs.
type Event struct {
	ID             string
	Type           EventType
	UserID         uint
	CustomerID     string
	SubscriptionID string
	PriceID        string
	OccurredAt     time.Time
}

// Entitlement is the billing-owned part of the account record.
type Entitlement struct {
	Tier             string
	Status           string
	TrialEndsAt      *time.Time
	StripeCustomerID *string
	SubscriptionID   *string
}

func EntitlementOf(u users.User) Entitlement {
	return Entitlement{
		Tier:             u.Tier,
		Status:           u.SubscriptionStatus,
		TrialEndsAt:      u.TrialEndsAt,
		StripeCustomerID: u.StripeCustomerID,
		SubscriptionID:   u.SubscriptionID,
	}
}

func (e Entitlement) ApplyTo(u *users.User) {
	u.Tier = e.Tier
	u.SubscriptionStatus = e.Status
	u.TrialEndsAt = e.TrialEndsAt
	u.StripeCustomerID = e.StripeCustomerID
	u.SubscriptionID = e.SubscriptionID
}

// Reconcile applies ev to cur. It is pure and idempotent: applying the same
// event twice yields the same record as applying it once. The second return
// value reports whether anything changed.
func Reconcile(cur Entitlement, ev Event, now time.Time) (Entitlement, bool) {
	next := cur

	switch ev.Type {
	case EventCheckoutCompleted:
		at := ev.OccurredAt
		if at.IsZero() {
			at = now
		}
		trialEnd := at.Add(access.TrialDuration).UTC()

		next.Status = users.StatusActive
		next.Tier = plans.TierFromPriceID(ev.PriceID)
		next.TrialEndsAt = &trialEnd
		if ev.CustomerID != "" {
			next.StripeCustomerID = strPtr(ev.CustomerID)
		}
		if ev.SubscriptionID != "" {
			next.SubscriptionID = strPtr(ev.SubscriptionID)
		}

	case EventSubscriptionDeleted:
		// a cancelled subscription takes its trial with it
		next.Status = users.StatusCancelled
		next.Tier = plans.TierFree
		next.TrialEndsAt = nil
	}

	if next.Status == users.StatusCancelled {
		next.Tier = plans.TierFree
	}

	return next, !equal(cur, next)
}

func equal(a, b Entitlement) bool {
	return a.Tier == b.Tier &&
		a.Status == b.Status &&
		timePtrEqual(a.TrialEndsAt, b.TrialEndsAt) &&
		strPtrEqual(a.StripeCustomerID, b.StripeCustomerID) &&
		strPtrEqual(a.SubscriptionID, b.SubscriptionID)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtr(s string) *string { return &s }
