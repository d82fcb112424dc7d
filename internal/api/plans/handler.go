package plans

import (
	"net/http"

	"tomaai-api/internal/domain/plans"

	"github.com/gin-gonic/gin"
)

type PlanResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Allowance any      `json:"allowance"` // number or "unlimited"
	PriceUSD  float64  `json:"price_usd"`
	Period    string   `json:"period"`
	Features  []string `json:"features"`
	PriceID   string   `json:"price_id,omitempty"`
}

// ListPlans serves the tier catalog with the configured Stripe price ids.
func ListPlans(c *gin.Context) {
	defs := plans.All()
	out := make([]PlanResponse, 0, len(defs))
	for _, d := range defs {
		var allowance any = d.Allowance
		if d.IsUnlimited() {
			allowance = "unlimited"
		}
		out = append(out, PlanResponse{
			ID:        d.ID,
			Name:      d.Name,
			Allowance: allowance,
			PriceUSD:  d.PriceUSD,
			Period:    d.Period,
			Features:  d.Features,
			PriceID:   d.PriceID,
		})
	}
	c.JSON(http.StatusOK, out)
}
