package honey

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// PriceSource answers the current USD price of a mint.
type PriceSource interface {
	Price(ctx context.Context, address string) (float64, error)
}

// Trader executes swaps with the user's own key. Amounts are denominated in
// SOL. The returned string is the transaction signature.
type Trader interface {
	Buy(ctx context.Context, secret, mint string, solAmount float64) (string, error)
	Sell(ctx context.Context, secret, mint string, solAmount float64) (string, error)
}

// Notifier pushes a message to a user, typically over Telegram. Delivery is
// best effort; the engine never blocks on it.
type Notifier interface {
	Notify(userID, text string)
}

// UserPositions is one user's slice of the monitoring workload.
type UserPositions struct {
	ID     string
	Secret string
	Tokens []*Token
}

// PositionLister feeds the engine its workload and takes back results. The
// Tokens in each UserPositions are snapshots owned by the engine for the
// duration of one cycle; PersistUser merges the mutated snapshots and the
// cycle's history lines back into the user record under the store's lock.
type PositionLister interface {
	HoneyUsers() []UserPositions
	PersistUser(id string, tokens []*Token, history []string)
}

// Engine polls prices and walks every user's staged-exit positions. One
// goroutine owns the whole cycle; per-user failures are logged and isolated
// so a bad token or a broken wallet never stalls other users.
type Engine struct {
	users  PositionLister
	prices PriceSource
	trader Trader
	notify Notifier
}

// NewEngine wires the staged-exit engine.
func NewEngine(users PositionLister, prices PriceSource, trader Trader, notify Notifier) *Engine {
	return &Engine{users: users, prices: prices, trader: trader, notify: notify}
}

// Start runs the poll loop until ctx is cancelled.
func (e *Engine) Start(ctx context.Context, interval time.Duration) {
	log.Info().Dur("interval", interval).Msg("honey engine started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("honey engine stopped")
			return
		case <-ticker.C:
			e.RunCycle(ctx)
		}
	}
}

// RunCycle processes every user once. State is persisted per user as soon as
// that user's tokens are done, so a crash mid-cycle loses at most the
// in-flight user.
func (e *Engine) RunCycle(ctx context.Context) {
	for _, up := range e.users.HoneyUsers() {
		history, changed := e.processUser(ctx, up)
		if changed {
			e.users.PersistUser(up.ID, up.Tokens, history)
		}
	}
}

func (e *Engine) processUser(ctx context.Context, up UserPositions) (history []string, changed bool) {
	for _, tok := range up.Tokens {
		if tok.Exhausted() {
			continue
		}

		lines, dirty := e.processToken(ctx, up, tok)
		history = append(history, lines...)
		changed = changed || dirty
	}
	return history, changed
}

func (e *Engine) processToken(ctx context.Context, up UserPositions, tok *Token) (history []string, changed bool) {
	price, err := e.prices.Price(ctx, tok.Address)
	if err != nil || price <= 0 {
		// No usable price this cycle. Skip, never guess.
		log.Debug().Str("user", up.ID).Str("mint", tok.Address).Err(err).Msg("honey poll: no price")
		return nil, false
	}

	if !tok.Armed() {
		return e.establish(ctx, up, tok, price)
	}

	gain := tok.GainPercent(price)
	for _, stage := range tok.PendingStages(gain) {
		amount := tok.SellAmount(stage)
		sig, err := e.trader.Sell(ctx, up.Secret, tok.Address, amount)
		if err != nil {
			// Stage stays untriggered and is retried next cycle. Later
			// stages are still attempted: each is an independent order.
			log.Warn().Err(err).
				Str("user", up.ID).Str("mint", tok.Address).Int("stage", stage).
				Msg("honey sell failed")
			e.notify.Notify(up.ID, fmt.Sprintf("⚠️ Honey sell failed for %s at +%.1f%%: %v",
				tok.Address, tok.ProfitPercents[stage], err))
			continue
		}

		tok.MarkTriggered(stage)
		changed = true
		line := fmt.Sprintf("Honey sell %s: %.1f%% of position at +%.1f%% gain (tx %s)",
			tok.Address, tok.SoldPercents[stage], tok.ProfitPercents[stage], sig)
		history = append(history, line)
		log.Info().
			Str("user", up.ID).Str("mint", tok.Address).Int("stage", stage).
			Float64("gain", gain).Str("tx", sig).
			Msg("honey stage fired")
		e.notify.Notify(up.ID, fmt.Sprintf("🍯 Sold %.1f%% of %s at +%.1f%% gain\nTx: %s",
			tok.SoldPercents[stage], tok.Address, tok.ProfitPercents[stage], sig))
	}

	if changed && tok.Exhausted() {
		e.notify.Notify(up.ID, fmt.Sprintf("✅ Honey position on %s fully exited", tok.Address))
	}
	return history, changed
}

// establish performs the one-time auto-buy and arms the position at the
// price observed this cycle. A failed buy leaves the token unarmed so the
// next cycle retries it.
func (e *Engine) establish(ctx context.Context, up UserPositions, tok *Token, price float64) (history []string, changed bool) {
	sig, err := e.trader.Buy(ctx, up.Secret, tok.Address, tok.BuyAmount)
	if err != nil {
		log.Warn().Err(err).Str("user", up.ID).Str("mint", tok.Address).Msg("honey buy failed")
		e.notify.Notify(up.ID, fmt.Sprintf("⚠️ Honey buy failed for %s: %v", tok.Address, err))
		return nil, false
	}

	tok.Arm(price, sig)
	line := fmt.Sprintf("Honey buy %s: %.4f SOL at $%.8f (tx %s)", tok.Address, tok.BuyAmount, price, sig)
	log.Info().Str("user", up.ID).Str("mint", tok.Address).Float64("entry", price).Str("tx", sig).
		Msg("honey position armed")
	e.notify.Notify(up.ID, fmt.Sprintf("🍯 Bought %.4f SOL of %s at $%.8f\nTx: %s",
		tok.BuyAmount, tok.Address, price, sig))
	return []string{line}, true
}
