package stripe

import (
	"testing"
	"time"

	"tomaai-api/internal/domain/access"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v75"
)

func TestCheckoutParamsSubscription(t *testing.T) {
	p := CheckoutRequest{
		UserID:       "42",
		Email:        "a@example.com",
		PriceID:      "price_pro_monthly",
		Subscription: true,
		SuccessURL:   "https://app/success",
		CancelURL:    "https://app/pricing",
	}.Params()

	assert.Equal(t, string(stripego.CheckoutSessionModeSubscription), *p.Mode)
	require.NotNil(t, p.SubscriptionData)
	assert.Equal(t, TrialDays, *p.SubscriptionData.TrialPeriodDays)
	assert.Equal(t, "42", p.Metadata["userId"])
	assert.Equal(t, "price_pro_monthly", p.Metadata["priceId"])
	assert.Equal(t, "42", *p.ClientReferenceID)
	assert.Equal(t, "a@example.com", *p.CustomerEmail)
	assert.Nil(t, p.Customer)
	require.Len(t, p.LineItems, 1)
	assert.Equal(t, "price_pro_monthly", *p.LineItems[0].Price)
}

func TestCheckoutParamsPaymentPrefersCustomer(t *testing.T) {
	p := CheckoutRequest{UserID: "7", Email: "b@example.com", CustomerID: "cus_1", PriceID: "price_x"}.Params()

	assert.Equal(t, string(stripego.CheckoutSessionModePayment), *p.Mode)
	assert.Nil(t, p.SubscriptionData)
	assert.Equal(t, "cus_1", *p.Customer)
	assert.Nil(t, p.CustomerEmail)
}

func TestCallsRequireKey(t *testing.T) {
	old := stripego.Key
	t.Cleanup(func() { stripego.Key = old })
	Configure("")

	_, err := NewCheckoutSession(CheckoutRequest{PriceID: "p"})
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = NewPortalSession("cus", "https://app")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = CancelSubscription("sub")
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, err = PriceIDForSession("cs_1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestTrialDaysMatchesLocalTrial(t *testing.T) {
	assert.Equal(t, access.TrialDuration, time.Duration(TrialDays)*24*time.Hour)
}
