package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"solana-honey-bot/internal/honey"
	"solana-honey-bot/internal/store"
	"solana-honey-bot/internal/token"
)

// defaultHoneyToken is the one-tap position from /add_honey_N.
func defaultHoneyToken(address string) (*honey.Token, error) {
	return honey.NewToken(address, 0.01, []float64{1, 2, 3}, []float64{30, 30, 40})
}

const topTokens = 10

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := strconv.FormatInt(chatID, 10)
	cmd := msg.Command()

	log.Debug().Str("user", userID).Str("command", cmd).Msg("command received")

	switch {
	case cmd == "start":
		b.cmdStart(userID, chatID, msg.CommandArguments())
	case cmd == "menu":
		b.cmdMenu(userID, chatID)
	case cmd == "help":
		b.cmdHelp(chatID)
	case cmd == "strategy":
		b.cmdStrategy(userID, chatID)
	case cmd == "strategy_on":
		b.cmdStrategyToggle(userID, chatID, true)
	case cmd == "strategy_off":
		b.cmdStrategyToggle(userID, chatID, false)
	case cmd == "strategy_show":
		b.cmdStrategyShow(userID, chatID)
	case cmd == "buy":
		b.cmdTrade(userID, chatID, StateBuyMint, "buy")
	case cmd == "sell":
		b.cmdTrade(userID, chatID, StateSellMint, "sell")
	case cmd == "exportkey":
		b.cmdExportKey(userID, chatID)
	case cmd == "tokens":
		b.cmdTokens(ctx, userID, chatID, false)
	case cmd == "history":
		b.cmdHistory(userID, chatID)
	case strings.HasPrefix(cmd, "add_honey_"):
		b.cmdAddHoney(userID, chatID, strings.TrimPrefix(cmd, "add_honey_"))
	default:
		b.reply(chatID, "Unknown command. Try /help.")
	}
}

func (b *Bot) cmdStart(userID string, chatID int64, payload string) {
	isNew := b.users.Get(userID) == nil
	u := b.users.GetOrCreate(userID)

	// Referral payload: /start <referrerID>. Only first contact counts and
	// self-referrals are ignored.
	referrer := strings.TrimSpace(payload)
	if isNew && referrer != "" && referrer != userID {
		b.users.Update(userID, func(u *store.User) {
			u.Referrer = referrer
		})
		b.users.Update(referrer, func(r *store.User) {
			r.Referrals = append(r.Referrals, userID)
		})
		b.Notify(referrer, "🎉 Someone joined with your invite link!")
		log.Info().Str("user", userID).Str("referrer", referrer).Msg("referral recorded")
	}

	welcome := "🍯 Welcome to Honey Bot!\n\n" +
		"Trade Solana tokens, screen new launches with your own strategy, " +
		"and let staged take-profits run while you sleep.\n\n" +
		"Start by creating or restoring a wallet."
	b.replyKB(chatID, welcome, mainMenuKeyboard(u.HasWallet()))
}

func (b *Bot) cmdMenu(userID string, chatID int64) {
	u := b.users.GetOrCreate(userID)
	b.replyKB(chatID, "What would you like to do?", mainMenuKeyboard(u.HasWallet()))
}

func (b *Bot) cmdHelp(chatID int64) {
	b.reply(chatID, `Commands:
/menu - main menu
/tokens - trending tokens filtered by your strategy
/strategy - set up your token filter
/strategy_on /strategy_off - toggle the filter
/strategy_show - show current filter
/buy /sell - manual trade
/exportkey - export your private key
/history - recent activity

From /tokens, use /add_honey_N to arm a staged take-profit on entry N.`)
}

func (b *Bot) cmdStrategy(userID string, chatID int64) {
	sess := b.sessions.get(chatID)
	sess.Reset()
	sess.State = StateStrategyVolume
	b.replyKB(chatID, "Strategy setup 1/3\nMinimum 24h volume in USD (at least 0.01):", cancelKeyboard())
}

func (b *Bot) cmdStrategyToggle(userID string, chatID int64, on bool) {
	var had bool
	b.users.Update(userID, func(u *store.User) {
		if u.Strategy == nil {
			return
		}
		had = true
		u.Strategy.Enabled = on
	})
	if !had {
		b.reply(chatID, "No strategy configured yet. Run /strategy first.")
		return
	}
	if on {
		b.reply(chatID, "✅ Strategy filter enabled.")
	} else {
		b.reply(chatID, "⏸ Strategy filter disabled. /tokens now shows everything.")
	}
}

func (b *Bot) cmdStrategyShow(userID string, chatID int64) {
	u := b.users.GetOrCreate(userID)
	if u.Strategy == nil {
		b.reply(chatID, "No strategy configured. Run /strategy to create one.")
		return
	}
	s := u.Strategy
	state := "off"
	if s.Enabled {
		state = "on"
	}
	b.reply(chatID, fmt.Sprintf("Your strategy (%s):\nMin volume: %s\nMin holders: %s\nMin age: %s min",
		state, fmtMin(s.MinVolume), fmtMin(s.MinHolders), fmtMin(s.MinAge)))
}

func fmtMin(v *float64) string {
	if v == nil {
		return "any"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func (b *Bot) cmdTrade(userID string, chatID int64, state ConvState, verb string) {
	u := b.users.GetOrCreate(userID)
	if !u.HasWallet() {
		b.replyKB(chatID, "You need a wallet first.", mainMenuKeyboard(false))
		return
	}
	sess := b.sessions.get(chatID)
	sess.Reset()
	sess.State = state
	b.replyKB(chatID, fmt.Sprintf("Which token do you want to %s? Send the mint address.", verb), cancelKeyboard())
}

func (b *Bot) cmdExportKey(userID string, chatID int64) {
	u := b.users.GetOrCreate(userID)
	if !u.HasWallet() {
		b.reply(chatID, "No wallet to export.")
		return
	}
	b.reply(chatID, "⚠️ Keep this secret. Anyone holding it controls your funds.\n\n"+u.Secret)
}

func (b *Bot) cmdHistory(userID string, chatID int64) {
	u := b.users.GetOrCreate(userID)
	if len(u.History) == 0 {
		b.reply(chatID, "No activity yet.")
		return
	}
	lines := u.History
	if len(lines) > 15 {
		lines = lines[len(lines)-15:]
	}
	b.reply(chatID, "Recent activity:\n"+strings.Join(lines, "\n"))
}

// cmdTokens serves the trending list: cached discovery list, filtered by the
// user's strategy, ranked by volume, top ten. The shown list is pinned to
// the user record so /add_honey_N indices stay stable until the next call.
func (b *Bot) cmdTokens(ctx context.Context, userID string, chatID int64, refreshed bool) {
	all := b.lists.Get(ctx)
	u := b.users.GetOrCreate(userID)

	filtered := token.ApplyStrategy(all, u.Strategy)
	top := token.RankByVolume(filtered, topTokens)

	if len(top) == 0 {
		b.reply(chatID, "No tokens match your strategy right now. Try /strategy_off or refresh later.")
		return
	}

	var sb strings.Builder
	if refreshed {
		sb.WriteString("🔄 Refreshed.\n")
	}
	sb.WriteString(fmt.Sprintf("Top %d tokens by volume", len(top)))
	if u.Strategy != nil && u.Strategy.Enabled {
		sb.WriteString(" (strategy filter on)")
	}
	sb.WriteString(":\n\n")
	for i, t := range top {
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, displayName(t), shortAddr(t.Address)))
		if t.Volume != nil {
			sb.WriteString(fmt.Sprintf("   volume $%.0f", *t.Volume))
		}
		if t.Price != nil {
			sb.WriteString(fmt.Sprintf("   price $%.8f", *t.Price))
		}
		sb.WriteString(fmt.Sprintf("\n   arm: /add_honey_%d\n", i+1))
	}

	b.users.Update(userID, func(u *store.User) {
		u.LastTokenList = top
		u.AddHistory(fmt.Sprintf("Viewed token list (%d shown)", len(top)))
	})

	b.replyKB(chatID, sb.String(), tokensKeyboard())
}

func displayName(t token.Info) string {
	switch {
	case t.Symbol != "":
		return t.Symbol
	case t.Name != "":
		return t.Name
	default:
		return shortAddr(t.Address)
	}
}

// cmdAddHoney arms a default staged take-profit on entry N of the user's
// last shown list: 0.01 SOL, sell 30/30/40 at +1/+2/+3 percent.
func (b *Bot) cmdAddHoney(userID string, chatID int64, arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		b.reply(chatID, "Usage: /add_honey_N with N from the /tokens list.")
		return
	}

	u := b.users.GetOrCreate(userID)
	if !u.HasWallet() {
		b.replyKB(chatID, "You need a wallet first.", mainMenuKeyboard(false))
		return
	}
	if n > len(u.LastTokenList) {
		b.reply(chatID, fmt.Sprintf("Entry %d is not on your last /tokens list (%d entries).", n, len(u.LastTokenList)))
		return
	}

	target := u.LastTokenList[n-1]
	tok, err := defaultHoneyToken(target.Address)
	if err != nil {
		b.reply(chatID, "Could not arm this token: "+err.Error())
		return
	}

	b.users.Update(userID, func(u *store.User) {
		u.AddHoneyToken(tok)
		u.AddHistory(fmt.Sprintf("Armed honey position on %s", target.Address))
	})

	b.reply(chatID, fmt.Sprintf("🍯 Armed %s: buy %.2f SOL, sell 30%%/30%%/40%% at +1%%/+2%%/+3%%.\nThe engine buys on the next price tick.",
		displayName(target), tok.BuyAmount))
}
