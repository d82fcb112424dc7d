package billing

import (
	"testing"
	"time"

	"tomaai-api/internal/domain/plans"
	"tomaai-api/internal/domain/users"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func freeRecord() Entitlement {
	return Entitlement{Tier: plans.TierFree, Status: users.StatusInactive}
}

func TestEventTypeFromStripe(t *testing.T) {
	cases := map[string]EventType{
		"checkout.session.completed":    EventCheckoutCompleted,
		"customer.subscription.created": EventSubscriptionCreated,
		"customer.subscription.updated": EventSubscriptionUpdated,
		"customer.subscription.deleted": EventSubscriptionDeleted,
		"invoice.payment_succeeded":     EventInvoicePaid,
		"invoice.paid":                  EventInvoicePaid,
		"invoice.payment_failed":        EventInvoiceFailed,
		"charge.refunded":               EventUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, EventTypeFromStripe(in), in)
	}
}

func TestCheckoutCompletedActivatesTierWithTrial(t *testing.T) {
	ev := Event{
		ID:             "evt_1",
		Type:           EventCheckoutCompleted,
		PriceID:        "price_pro_monthly",
		CustomerID:     "cus_123",
		SubscriptionID: "sub_123",
		OccurredAt:     now,
	}

	next, changed := Reconcile(freeRecord(), ev, now)
	require.True(t, changed)
	assert.Equal(t, plans.TierPro, next.Tier)
	assert.Equal(t, users.StatusActive, next.Status)
	require.NotNil(t, next.TrialEndsAt)
	assert.True(t, next.TrialEndsAt.Equal(now.Add(72*time.Hour)))
	require.NotNil(t, next.StripeCustomerID)
	assert.Equal(t, "cus_123", *next.StripeCustomerID)
	assert.Equal(t, "sub_123", *next.SubscriptionID)
}

func TestCheckoutCompletedWithoutEventTimeUsesNow(t *testing.T) {
	next, _ := Reconcile(freeRecord(), Event{Type: EventCheckoutCompleted, PriceID: "price_starter_monthly"}, now)
	assert.Equal(t, plans.TierStarter, next.Tier)
	assert.True(t, next.TrialEndsAt.Equal(now.Add(72*time.Hour)))
}

func TestCheckoutCompletedUnknownPriceIsFree(t *testing.T) {
	next, _ := Reconcile(freeRecord(), Event{Type: EventCheckoutCompleted, PriceID: "price_mystery"}, now)
	assert.Equal(t, plans.TierFree, next.Tier)
	assert.Equal(t, users.StatusActive, next.Status)
}

func TestCheckoutRedeliveryIsIdempotent(t *testing.T) {
	ev := Event{Type: EventCheckoutCompleted, PriceID: "price_pro_monthly", OccurredAt: now}
	once, _ := Reconcile(freeRecord(), ev, now)
	twice, changed := Reconcile(once, ev, now.Add(10*time.Minute))
	assert.False(t, changed)
	assert.Equal(t, once, twice)
}

func TestSubscriptionDeletedDowngrades(t *testing.T) {
	trialEnd := now.Add(time.Hour)
	cur := Entitlement{Tier: plans.TierPro, Status: users.StatusActive, TrialEndsAt: &trialEnd}

	next, changed := Reconcile(cur, Event{Type: EventSubscriptionDeleted}, now)
	assert.True(t, changed)
	assert.Equal(t, plans.TierFree, next.Tier)
	assert.Equal(t, users.StatusCancelled, next.Status)
	assert.Nil(t, next.TrialEndsAt)

	again, changed := Reconcile(next, Event{Type: EventSubscriptionDeleted}, now)
	assert.False(t, changed)
	assert.Equal(t, next, again)
}

func TestInformationalEventsLeaveRecordAlone(t *testing.T) {
	cur := Entitlement{Tier: plans.TierStarter, Status: users.StatusActive}
	for _, typ := range []EventType{
		EventSubscriptionCreated,
		EventSubscriptionUpdated,
		EventInvoicePaid,
		EventInvoiceFailed,
		EventUnknown,
	} {
		next, changed := Reconcile(cur, Event{Type: typ, PriceID: "price_enterprise_monthly"}, now)
		assert.False(t, changed, typ)
		assert.Equal(t, cur, next, typ)
	}
}

func TestCancelledForcesFree(t *testing.T) {
	cur := Entitlement{Tier: plans.TierEnterprise, Status: users.StatusCancelled}
	next, changed := Reconcile(cur, Event{Type: EventInvoicePaid}, now)
	assert.True(t, changed)
	assert.Equal(t, plans.TierFree, next.Tier)
}

func TestEntitlementRoundTripOnUser(t *testing.T) {
	cus := "cus_9"
	u := users.User{Tier: plans.TierPro, SubscriptionStatus: users.StatusActive, StripeCustomerID: &cus}
	e := EntitlementOf(u)
	e.Tier = plans.TierFree
	e.ApplyTo(&u)
	assert.Equal(t, plans.TierFree, u.Tier)
	assert.Equal(t, "cus_9", *u.StripeCustomerID)
}
