package event

import "strings"

// Tier labels inferred from event names.
const (
	TierNational     = "National"
	TierState        = "State"
	TierChampionship = "Championship"
	TierShow         = "Show"
)

// tierRules is evaluated in order; the first keyword found in the name
// wins even when several appear.
var tierRules = []struct {
	keyword string
	tier    string
}{
	{"national", TierNational},
	{"state", TierState},
	{"championship", TierChampionship},
	{"show", TierShow},
}

// InferTier classifies an event by the keywords in its name. Returns
// the empty string when no rule matches.
func InferTier(name string) string {
	lower := strings.ToLower(name)
	for _, r := range tierRules {
		if strings.Contains(lower, r.keyword) {
			return r.tier
		}
	}
	return ""
}
