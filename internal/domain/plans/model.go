package plans

// Definition is a static tier entry of the catalog.
type Definition struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Allowance int      `json:"allowance"` // Unlimited for no cap
	PriceUSD  float64  `json:"price_usd"`
	Period    string   `json:"period"`
	Features  []string `json:"features"`
	PriceID   string   `json:"stripe_price_id,omitempty"`
}

func (d Definition) IsUnlimited() bool {
	return d.Allowance == Unlimited
}

// catalog is ordered by price.
var catalog = []Definition{
	{
		ID:        TierFree,
		Name:      "Free",
		Allowance: 3,
		PriceUSD:  0,
		Period:    PeriodLifetime,
		Features:  []string{"3 images", "Standard quality", "All styles"},
	},
	{
		ID:        TierStarter,
		Name:      "Starter",
		Allowance: 50,
		PriceUSD:  9,
		Period:    PeriodMonthly,
		Features:  []string{"50 images per month", "HD quality", "All styles", "3-day free trial"},
	},
	{
		ID:        TierPro,
		Name:      "Pro",
		Allowance: 200,
		PriceUSD:  15,
		Period:    PeriodMonthly,
		Features:  []string{"200 images per month", "HD quality", "Priority generation", "3-day free trial"},
	},
	{
		ID:        TierEnterprise,
		Name:      "Enterprise",
		Allowance: Unlimited,
		PriceUSD:  49,
		Period:    PeriodMonthly,
		Features:  []string{"Unlimited images", "HD quality", "Priority generation", "3-day free trial"},
	},
}

// Lookup returns the definition for tier. Unknown ids get the free tier so a
// corrupt record never grants more than the base allowance.
func Lookup(tier string) Definition {
	for _, d := range catalog {
		if d.ID == tier {
			return d
		}
	}
	return catalog[0]
}

// All returns the catalog with the configured Stripe price ids filled in.
func All() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog)
	for id, tier := range PriceIDs {
		for i := range out {
			if out[i].ID == tier {
				out[i].PriceID = id
			}
		}
	}
	return out
}
