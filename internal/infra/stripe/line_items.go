package stripe

import (
	"errors"
	"fmt"

	stripego "github.com/stripe/stripe-go/v75"
	checkoutsession "github.com/stripe/stripe-go/v75/checkout/session"
)

var ErrNotConfigured = errors.New("stripe secret key not configured")

// Configure sets the API key used by the stripe-go package helpers.
func Configure(secretKey string) {
	stripego.Key = secretKey
}

func Configured() bool {
	return stripego.Key != ""
}

// PriceIDForSession returns the price of the first line item of a checkout
// session. It is a variable so tests can stub the API call.
var PriceIDForSession = func(sessionID string) (string, error) {
	if !Configured() {
		return "", ErrNotConfigured
	}

	params := &stripego.CheckoutSessionListLineItemsParams{Session: stripego.String(sessionID)}
	params.Limit = stripego.Int64(1)
	it := checkoutsession.ListLineItems(params)
	for it.Next() {
		item := it.LineItem()
		if item.Price != nil && item.Price.ID != "" {
			return item.Price.ID, nil
		}
	}
	if err := it.Err(); err != nil {
		return "", fmt.Errorf("list line items for %s: %w", sessionID, err)
	}
	return "", nil
}

// FirstLineItemPrice reads the price from line items already expanded on
// the session payload.
func FirstLineItemPrice(s *stripego.CheckoutSession) string {
	if s == nil || s.LineItems == nil {
		return ""
	}
	for _, item := range s.LineItems.Data {
		if item != nil && item.Price != nil && item.Price.ID != "" {
			return item.Price.ID
		}
	}
	return ""
}
