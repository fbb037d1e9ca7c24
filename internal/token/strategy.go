package token

import "sort"

// Strategy is a user's token filter: minimum thresholds applied to the
// discovery feed. A nil bound means "no constraint", not zero.
type Strategy struct {
	MinVolume  *float64 `json:"minVolume,omitempty"`
	MinHolders *float64 `json:"minHolders,omitempty"`
	MinAge     *float64 `json:"minAge,omitempty"`
	Enabled    bool     `json:"enabled"`
}

// meets evaluates one threshold/field pair. A set threshold against a
// missing field is vacuously satisfied: unknown data never excludes.
func meets(field *float64, min *float64) bool {
	if min == nil {
		return true
	}
	if field == nil {
		return true
	}
	return *field >= *min
}

// ApplyStrategy returns the subset of tokens matching the strategy.
// A nil or disabled strategy passes the input through unchanged.
// All set thresholds must hold (logical AND).
func ApplyStrategy(tokens []Info, strat *Strategy) []Info {
	if strat == nil || !strat.Enabled {
		return tokens
	}
	var out []Info
	for _, t := range tokens {
		if meets(t.Volume, strat.MinVolume) &&
			meets(t.Holders, strat.MinHolders) &&
			meets(t.AgeMinutes, strat.MinAge) {
			out = append(out, t)
		}
	}
	return out
}

// RankByVolume sorts tokens by volume descending and truncates to n.
// Tokens without a volume cannot be ranked and are dropped.
func RankByVolume(tokens []Info, n int) []Info {
	ranked := make([]Info, 0, len(tokens))
	for _, t := range tokens {
		if t.Volume != nil {
			ranked = append(ranked, t)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Volume > *ranked[j].Volume
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
