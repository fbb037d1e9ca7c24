package honey

import (
	"errors"
	"fmt"
	"math"
)

// Position bounds enforced at setup time.
const (
	MaxStages  = 3
	MinProfit  = 1.0
	MaxProfit  = 20.0
	percentSum = 100.0
)

var (
	ErrNoStages        = errors.New("at least one profit stage required")
	ErrTooManyStages   = fmt.Errorf("at most %d profit stages allowed", MaxStages)
	ErrStageMismatch   = errors.New("sell percentages must match profit stages")
	ErrPercentSum      = errors.New("sell percentages must total 100")
	ErrStagesNotSorted = errors.New("profit stages must be ascending")
)

// Token is one user's staged-exit position: buy once, then liquidate fixed
// slices of the original position as ascending profit thresholds are crossed.
type Token struct {
	Address        string    `json:"address"`
	BuyAmount      float64   `json:"buyAmount"`
	ProfitPercents []float64 `json:"profitPercents"`
	SoldPercents   []float64 `json:"soldPercents"`

	// Set when the position is established.
	EntryPrice float64 `json:"entryPrice,omitempty"`
	EntryTxSig string  `json:"entryTxSig,omitempty"`

	// Triggered[i] records that stage i already fired; a stage fires at
	// most once for the lifetime of the position.
	Triggered []bool `json:"triggered,omitempty"`
}

// NewToken validates and builds a staged-exit position. Rejected inputs
// leave no state behind: callers reply to the user and move on.
func NewToken(address string, buyAmount float64, profitPercents, soldPercents []float64) (*Token, error) {
	if address == "" {
		return nil, errors.New("token address required")
	}
	if buyAmount <= 0 {
		return nil, errors.New("buy amount must be > 0")
	}
	if len(profitPercents) == 0 {
		return nil, ErrNoStages
	}
	if len(profitPercents) > MaxStages {
		return nil, ErrTooManyStages
	}
	if len(soldPercents) != len(profitPercents) {
		return nil, ErrStageMismatch
	}

	var sum float64
	for i, p := range profitPercents {
		if p < MinProfit || p > MaxProfit {
			return nil, fmt.Errorf("profit stage %d out of range [%v,%v]: %v", i+1, MinProfit, MaxProfit, p)
		}
		if i > 0 && p <= profitPercents[i-1] {
			return nil, ErrStagesNotSorted
		}
		sum += soldPercents[i]
	}
	if math.Abs(sum-percentSum) > 1e-9 {
		return nil, ErrPercentSum
	}

	return &Token{
		Address:        address,
		BuyAmount:      buyAmount,
		ProfitPercents: append([]float64(nil), profitPercents...),
		SoldPercents:   append([]float64(nil), soldPercents...),
		Triggered:      make([]bool, len(profitPercents)),
	}, nil
}

// Clone returns a deep copy. The engine works on clones so its goroutine
// never touches a record the store is serializing or a handler is reading.
func (t *Token) Clone() *Token {
	c := *t
	c.ProfitPercents = append([]float64(nil), t.ProfitPercents...)
	c.SoldPercents = append([]float64(nil), t.SoldPercents...)
	c.Triggered = append([]bool(nil), t.Triggered...)
	return &c
}

// SameSetup reports whether two positions carry the same configuration.
// The store uses it to detect a position the user reconfigured while a
// poll cycle was in flight; stage results for the old setup must not land
// on the new one.
func (t *Token) SameSetup(o *Token) bool {
	if t.Address != o.Address || t.BuyAmount != o.BuyAmount {
		return false
	}
	if len(t.ProfitPercents) != len(o.ProfitPercents) {
		return false
	}
	for i := range t.ProfitPercents {
		if t.ProfitPercents[i] != o.ProfitPercents[i] || t.SoldPercents[i] != o.SoldPercents[i] {
			return false
		}
	}
	return true
}

// Armed reports whether the entry has been recorded.
func (t *Token) Armed() bool {
	return t.EntryPrice > 0
}

// Arm records the entry price and transaction once the buy lands.
func (t *Token) Arm(entryPrice float64, txSig string) {
	t.EntryPrice = entryPrice
	t.EntryTxSig = txSig
	if len(t.Triggered) != len(t.ProfitPercents) {
		t.Triggered = make([]bool, len(t.ProfitPercents))
	}
}

// Exhausted reports whether every stage has fired (terminal state).
func (t *Token) Exhausted() bool {
	if !t.Armed() || len(t.Triggered) != len(t.ProfitPercents) {
		return false
	}
	for _, fired := range t.Triggered {
		if !fired {
			return false
		}
	}
	return true
}

// GainPercent computes the percent gain of price over the entry.
func (t *Token) GainPercent(price float64) float64 {
	if t.EntryPrice <= 0 {
		return 0
	}
	return (price - t.EntryPrice) / t.EntryPrice * 100
}

// PendingStages returns the indices of stages not yet fired whose threshold
// the gain has crossed, in ascending order. A price gapping past several
// thresholds yields them all, so one poll can fire multiple stages.
func (t *Token) PendingStages(gain float64) []int {
	var pending []int
	for i, threshold := range t.ProfitPercents {
		if i < len(t.Triggered) && t.Triggered[i] {
			continue
		}
		if gain >= threshold {
			pending = append(pending, i)
		}
	}
	return pending
}

// SellAmount returns the liquidation size of a stage: its percentage of the
// ORIGINAL buy amount, never of the remainder.
func (t *Token) SellAmount(stage int) float64 {
	return t.BuyAmount * t.SoldPercents[stage] / 100
}

// MarkTriggered records that a stage fired.
func (t *Token) MarkTriggered(stage int) {
	if len(t.Triggered) != len(t.ProfitPercents) {
		t.Triggered = make([]bool, len(t.ProfitPercents))
	}
	t.Triggered[stage] = true
}
