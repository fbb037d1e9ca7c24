package token

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Info is the normalized snapshot of a tradable token. All numeric fields
// are pointers: nil means the source did not report the value, which is not
// the same as zero and must never disqualify a token from a filter.
type Info struct {
	Address    string   `json:"address"`
	Symbol     string   `json:"symbol,omitempty"`
	Name       string   `json:"name,omitempty"`
	MarketCap  *float64 `json:"marketCap,omitempty"`
	Volume     *float64 `json:"volume,omitempty"`
	Holders    *float64 `json:"holders,omitempty"`
	AgeMinutes *float64 `json:"ageMinutes,omitempty"`
	Price      *float64 `json:"price,omitempty"`
}

// HasPrice reports whether the token carries a usable price (present and > 0).
func (i *Info) HasPrice() bool {
	return i != nil && i.Price != nil && *i.Price > 0
}

// Num wraps a float64 as an optional field.
func Num(v float64) *float64 {
	return &v
}

// ParseNumber converts a loosely-typed JSON value to a float64. Market-data
// APIs mix raw numbers with formatted strings ("1,234,567", "$0.42"), so
// string input is stripped of thousands separators, currency symbols and
// whitespace before parsing. Returns false when no number can be extracted.
func ParseNumber(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(val)
		s = strings.Map(func(r rune) rune {
			switch r {
			case ',', '$', '€', '£', ' ', '_':
				return -1
			}
			return r
		}, s)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// O(1) Base58 lookup table
var base58Set = func() [256]bool {
	var set [256]bool
	const base58Chars = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	for i := 0; i < len(base58Chars); i++ {
		set[base58Chars[i]] = true
	}
	return set
}()

// IsMintAddress reports whether s looks like a Solana mint address
// (Base58, 32-44 chars). This is a shape check, not an on-chain lookup.
func IsMintAddress(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !base58Set[s[i]] {
			return false
		}
	}
	return true
}

// MergeLists unions token lists by address. First-seen wins: a later list
// never overwrites an entry an earlier list already contributed, and the
// output preserves first-occurrence order.
func MergeLists(lists ...[]Info) []Info {
	seen := make(map[string]struct{})
	var merged []Info
	for _, list := range lists {
		for _, t := range list {
			if t.Address == "" {
				continue
			}
			if _, ok := seen[t.Address]; ok {
				continue
			}
			seen[t.Address] = struct{}{}
			merged = append(merged, t)
		}
	}
	return merged
}
