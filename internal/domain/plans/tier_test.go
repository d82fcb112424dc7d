package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupKnownTiers(t *testing.T) {
	assert.Equal(t, 3, Lookup(TierFree).Allowance)
	assert.Equal(t, 50, Lookup(TierStarter).Allowance)
	assert.Equal(t, 200, Lookup(TierPro).Allowance)
	assert.True(t, Lookup(TierEnterprise).IsUnlimited())
	assert.Equal(t, PeriodLifetime, Lookup(TierFree).Period)
	assert.Equal(t, PeriodMonthly, Lookup(TierPro).Period)
}

func TestLookupUnknownFallsBackToFree(t *testing.T) {
	for _, id := range []string{"", "platinum", "ENTERPRISE", " pro"} {
		assert.Equal(t, TierFree, Lookup(id).ID, "id %q", id)
	}
}

func TestAllowancesNonDecreasingByPrice(t *testing.T) {
	defs := All()
	prev := 0
	for i, d := range defs {
		if i > 0 {
			assert.GreaterOrEqual(t, d.PriceUSD, defs[i-1].PriceUSD)
		}
		if d.IsUnlimited() {
			continue
		}
		assert.GreaterOrEqual(t, d.Allowance, prev, d.ID)
		prev = d.Allowance
	}
}

func TestTierFromPriceID(t *testing.T) {
	old := PriceIDs
	t.Cleanup(func() { PriceIDs = old })
	ConfigurePriceIDs("price_1AbC", "price_2DeF", "")

	cases := map[string]string{
		"price_1AbC":               TierStarter,
		"price_2DeF":               TierPro,
		"price_enterprise_monthly": TierEnterprise,
		"price_pro_monthly":        TierPro,
		"price_starter_monthly":    TierStarter,
		"price_unknown":            TierFree,
		"price_1PRoXq2eZvKYlo2C":   TierFree,
		"price_STARTER_MONTHLY":    TierFree,
		"":                         TierFree,
	}
	for in, want := range cases {
		assert.Equal(t, want, TierFromPriceID(in), "price %q", in)
	}
}

func TestAllFillsConfiguredPriceIDs(t *testing.T) {
	old := PriceIDs
	t.Cleanup(func() { PriceIDs = old })
	ConfigurePriceIDs("price_s", "price_p", "price_e")

	got := map[string]string{}
	for _, d := range All() {
		got[d.ID] = d.PriceID
	}
	assert.Equal(t, "", got[TierFree])
	assert.Equal(t, "price_s", got[TierStarter])
	assert.Equal(t, "price_p", got[TierPro])
	assert.Equal(t, "price_e", got[TierEnterprise])
	// catalog itself is untouched
	assert.Equal(t, "", Lookup(TierPro).PriceID)
}
