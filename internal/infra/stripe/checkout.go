package stripe

import (
	"time"

	"tomaai-api/internal/domain/access"

	stripego "github.com/stripe/stripe-go/v75"
	portalsession "github.com/stripe/stripe-go/v75/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
	"github.com/stripe/stripe-go/v75/subscription"
)

// TrialDays is the free trial attached to subscription checkouts. It is
// the same window the reconciler grants locally on checkout completion.
const TrialDays = int64(access.TrialDuration / (24 * time.Hour))

// CheckoutRequest describes one hosted checkout for one price.
type CheckoutRequest struct {
	UserID       string
	Email        string
	CustomerID   string
	PriceID      string
	Subscription bool
	SuccessURL   string
	CancelURL    string
}

// Params builds the stripe-go parameters for r. The webhook correlates the
// session through metadata userId and the client reference id.
func (r CheckoutRequest) Params() *stripego.CheckoutSessionParams {
	meta := map[string]string{"userId": r.UserID, "priceId": r.PriceID}

	params := &stripego.CheckoutSessionParams{
		SuccessURL:        stripego.String(r.SuccessURL),
		CancelURL:         stripego.String(r.CancelURL),
		ClientReferenceID: stripego.String(r.UserID),
		LineItems: []*stripego.CheckoutSessionLineItemParams{
			{Price: stripego.String(r.PriceID), Quantity: stripego.Int64(1)},
		},
		Metadata: meta,
	}

	switch {
	case r.CustomerID != "":
		params.Customer = stripego.String(r.CustomerID)
	case r.Email != "":
		params.CustomerEmail = stripego.String(r.Email)
	}

	if r.Subscription {
		params.Mode = stripego.String(string(stripego.CheckoutSessionModeSubscription))
		params.SubscriptionData = &stripego.CheckoutSessionSubscriptionDataParams{
			TrialPeriodDays: stripego.Int64(TrialDays),
			Metadata:        map[string]string{"userId": r.UserID},
		}
	} else {
		params.Mode = stripego.String(string(stripego.CheckoutSessionModePayment))
	}
	return params
}

// The API calls below are variables so handler tests can stub them.

var NewCheckoutSession = func(r CheckoutRequest) (*stripego.CheckoutSession, error) {
	if !Configured() {
		return nil, ErrNotConfigured
	}
	return checkoutsession.New(r.Params())
}

var NewPortalSession = func(customerID, returnURL string) (*stripego.BillingPortalSession, error) {
	if !Configured() {
		return nil, ErrNotConfigured
	}
	return portalsession.New(&stripego.BillingPortalSessionParams{
		Customer:  stripego.String(customerID),
		ReturnURL: stripego.String(returnURL),
	})
}

// CancelSubscription cancels immediately; Stripe then sends
// customer.subscription.deleted which downgrades the account.
var CancelSubscription = func(subscriptionID string) (*stripego.Subscription, error) {
	if !Configured() {
		return nil, ErrNotConfigured
	}
	return subscription.Cancel(subscriptionID, nil)
}
