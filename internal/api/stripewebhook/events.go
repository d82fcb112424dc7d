package stripewebhooks

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"tomaai-api/internal/domain/billing"
	"tomaai-api/internal/domain/plans"
	stripeinfra "tomaai-api/internal/infra/stripe"

	"github.com/stripe/stripe-go/v75"
)

var errMalformedEvent = errors.New("malformed event object")

// parsedEvent is a verified Stripe event reduced to the billing event plus
// the payment row a completed checkout leaves behind.
type parsedEvent struct {
	StripeID     string
	StripeType   string
	Event        billing.Event
	Payment      *billing.Payment
	StripeStatus string
}

func parseEvent(event *stripe.Event) (parsedEvent, error) {
	p := parsedEvent{
		StripeID:   event.ID,
		StripeType: string(event.Type),
		Event: billing.Event{
			ID:   event.ID,
			Type: billing.EventTypeFromStripe(string(event.Type)),
		},
	}
	if event.Created > 0 {
		p.Event.OccurredAt = time.Unix(event.Created, 0).UTC()
	}

	switch p.Event.Type {
	case billing.EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return p, fmt.Errorf("%w: checkout session: %v", errMalformedEvent, err)
		}
		return p, fillCheckout(&p, &session)

	case billing.EventSubscriptionCreated, billing.EventSubscriptionUpdated, billing.EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return p, fmt.Errorf("%w: subscription: %v", errMalformedEvent, err)
		}
		p.Event.SubscriptionID = sub.ID
		p.Event.UserID = userIDFromMetadata(sub.Metadata)
		if sub.Customer != nil {
			p.Event.CustomerID = sub.Customer.ID
		}
		p.StripeStatus = string(sub.Status)

	case billing.EventInvoicePaid, billing.EventInvoiceFailed:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return p, fmt.Errorf("%w: invoice: %v", errMalformedEvent, err)
		}
		if inv.Customer != nil {
			p.Event.CustomerID = inv.Customer.ID
		}
		if inv.Subscription != nil {
			p.Event.SubscriptionID = inv.Subscription.ID
		}
		p.StripeStatus = string(inv.Status)
	}

	return p, nil
}

func fillCheckout(p *parsedEvent, s *stripe.CheckoutSession) error {
	p.Event.UserID = userIDFromMetadata(s.Metadata)
	if p.Event.UserID == 0 {
		p.Event.UserID = parseUserID(s.ClientReferenceID)
	}
	if s.Customer != nil {
		p.Event.CustomerID = s.Customer.ID
	}
	if s.Subscription != nil {
		p.Event.SubscriptionID = s.Subscription.ID
	}

	priceID := stripeinfra.FirstLineItemPrice(s)
	if priceID == "" && s.Metadata != nil {
		priceID = s.Metadata["priceId"]
	}
	if priceID == "" && s.ID != "" {
		id, err := stripeinfra.PriceIDForSession(s.ID)
		switch {
		case errors.Is(err, stripeinfra.ErrNotConfigured):
			// no API access, the tier resolves to free
		case err != nil:
			return err
		default:
			priceID = id
		}
	}
	p.Event.PriceID = priceID

	if s.ID != "" {
		payment := &billing.Payment{
			UserID:          p.Event.UserID,
			StripeSessionID: s.ID,
			Mode:            string(s.Mode),
			Tier:            plans.TierFromPriceID(priceID),
			PriceID:         priceID,
			Amount:          float64(s.AmountTotal) / 100.0,
			Currency:        strings.ToUpper(string(s.Currency)),
			Status:          string(s.PaymentStatus),
		}
		if p.Event.SubscriptionID != "" {
			sub := p.Event.SubscriptionID
			payment.StripeSubscriptionID = &sub
		}
		p.Payment = payment
	}
	return nil
}

// userIDFromMetadata reads the account id checkout sessions carry.
func userIDFromMetadata(md map[string]string) uint {
	if md == nil {
		return 0
	}
	if id := parseUserID(md["userId"]); id != 0 {
		return id
	}
	return parseUserID(md["user_id"])
}

func parseUserID(s string) uint {
	if s == "" {
		return 0
	}
	uid, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return uint(uid)
}
