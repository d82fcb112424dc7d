package access

import (
	"encoding/json"
	"strconv"
)

// Reason explains a denied decision.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonLimitReached  Reason = "limit_reached"
	ReasonEmailRequired Reason = "email_required"
	ReasonUnavailable   Reason = "entitlement_unavailable"
)

// Remaining is a non-negative image count or unlimited. It marshals to a JSON
// number or the string "unlimited".
type Remaining struct {
	Count     int
	Unlimited bool
}

func UnlimitedRemaining() Remaining { return Remaining{Unlimited: true} }

func (r Remaining) String() string {
	if r.Unlimited {
		return "unlimited"
	}
	return strconv.Itoa(r.Count)
}

func (r Remaining) MarshalJSON() ([]byte, error) {
	if r.Unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(r.Count)), nil
}

func (r *Remaining) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = Remaining{Unlimited: s == "unlimited"}
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*r = Remaining{Count: n}
	return nil
}
