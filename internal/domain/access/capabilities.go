package access

import "tomaai-api/internal/domain/plans"

const (
	CapGenerate = "generate"
	CapHD       = "hd_quality"
	CapPriority = "priority"
)

// CapabilitiesFor lists what a tier unlocks beyond the image allowance.
func CapabilitiesFor(tier string, allowed bool) []string {
	caps := []string{}
	if allowed {
		caps = append(caps, CapGenerate)
	}

	switch plans.Lookup(tier).ID {
	case plans.TierStarter:
		caps = append(caps, CapHD)
	case plans.TierPro, plans.TierEnterprise:
		caps = append(caps, CapHD, CapPriority)
	}
	return caps
}

func HasCapability(caps []string, capability string) bool {
	for _, c := range caps {
		if c == capability {
			return true
		}
	}
	return false
}
