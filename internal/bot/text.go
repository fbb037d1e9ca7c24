package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"solana-honey-bot/internal/blockchain"
	"solana-honey-bot/internal/store"
	"solana-honey-bot/internal/token"
)

// Strategy input floors. Anything below is a typo, not a filter.
const (
	minStrategyVolume  = 0.01
	minStrategyHolders = 10
	minStrategyAge     = 1
)

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := strconv.FormatInt(chatID, 10)
	sess := b.sessions.get(chatID)
	input := strings.TrimSpace(msg.Text)

	switch sess.State {
	case StateNone:
		b.reply(chatID, "Not sure what to do with that. Try /menu.")

	case StateRestoreKey:
		b.textRestoreKey(userID, chatID, sess, input)

	case StateStrategyVolume:
		if v, ok := parsePositive(input, minStrategyVolume); ok {
			sess.Strategy.MinVolume = token.Num(v)
			sess.State = StateStrategyHolders
			b.replyKB(chatID, "Strategy setup 2/3\nMinimum holder count (at least 10):", cancelKeyboard())
		} else {
			b.reply(chatID, fmt.Sprintf("Send a number of at least %v.", minStrategyVolume))
		}

	case StateStrategyHolders:
		if v, ok := parsePositive(input, minStrategyHolders); ok {
			sess.Strategy.MinHolders = token.Num(v)
			sess.State = StateStrategyAge
			b.replyKB(chatID, "Strategy setup 3/3\nMinimum token age in minutes (at least 1):", cancelKeyboard())
		} else {
			b.reply(chatID, fmt.Sprintf("Send a number of at least %v.", minStrategyHolders))
		}

	case StateStrategyAge:
		v, ok := parsePositive(input, minStrategyAge)
		if !ok {
			b.reply(chatID, fmt.Sprintf("Send a number of at least %v.", minStrategyAge))
			return
		}
		sess.Strategy.MinAge = token.Num(v)
		sess.Strategy.Enabled = true
		strategy := sess.Strategy
		b.users.Update(userID, func(u *store.User) {
			u.Strategy = &strategy
			u.AddHistory("Strategy configured")
		})
		sess.Reset()
		b.reply(chatID, "✅ Strategy saved and enabled. /tokens now applies it.")

	case StateHoneyMint:
		if !token.IsMintAddress(input) {
			b.reply(chatID, "That does not look like a Solana mint address. Try again.")
			return
		}
		sess.HoneyMint = input
		sess.State = StateHoneyAmount
		b.replyKB(chatID, "Honey setup 2/4\nBuy amount in SOL (e.g. 0.05):", cancelKeyboard())

	case StateHoneyAmount:
		v, ok := parsePositive(input, 0)
		if !ok || v <= 0 {
			b.reply(chatID, "Send a SOL amount greater than 0.")
			return
		}
		sess.HoneyAmount = v
		sess.State = StateHoneyProfits
		b.replyKB(chatID, "Honey setup 3/4\nProfit stages: 1 to 3 percents between 1 and 20, ascending, comma separated (e.g. 5,10,15):", cancelKeyboard())

	case StateHoneyProfits:
		profits, err := parsePercentList(input)
		if err != nil {
			b.reply(chatID, err.Error())
			return
		}
		sess.HoneyProfits = profits
		sess.State = StateHoneySells
		b.replyKB(chatID, fmt.Sprintf("Honey setup 4/4\nSell percents for your %d stage(s), totalling 100 (e.g. 30,30,40):", len(profits)), cancelKeyboard())

	case StateHoneySells:
		sells, err := parseFloatList(input)
		if err != nil {
			b.reply(chatID, err.Error())
			return
		}
		tok, err := sess.DraftHoney(sells)
		if err != nil {
			b.reply(chatID, "That setup is invalid: "+err.Error()+"\nSend the sell percents again.")
			return
		}
		b.users.Update(userID, func(u *store.User) {
			u.AddHoneyToken(tok)
			u.AddHistory(fmt.Sprintf("Armed honey position on %s", tok.Address))
		})
		sess.Reset()
		b.reply(chatID, fmt.Sprintf("🍯 Position armed on %s. The engine buys %.4f SOL on the next price tick.",
			shortAddr(tok.Address), tok.BuyAmount))

	case StateBuyMint, StateSellMint:
		if !token.IsMintAddress(input) {
			b.reply(chatID, "That does not look like a Solana mint address. Try again.")
			return
		}
		sess.TradeMint = input
		if sess.State == StateBuyMint {
			sess.State = StateBuyAmount
		} else {
			sess.State = StateSellAmount
		}
		b.replyKB(chatID, "Amount in SOL:", cancelKeyboard())

	case StateBuyAmount:
		b.textExecuteTrade(ctx, userID, chatID, sess, input, true)

	case StateSellAmount:
		b.textExecuteTrade(ctx, userID, chatID, sess, input, false)

	case StateCopyAdd:
		if !token.IsMintAddress(input) {
			b.reply(chatID, "That does not look like a Solana wallet address. Try again.")
			return
		}
		b.users.Update(userID, func(u *store.User) {
			for _, w := range u.CopiedWallets {
				if w == input {
					return
				}
			}
			u.CopiedWallets = append(u.CopiedWallets, input)
			u.AddHistory("Started copying " + input)
		})
		sess.Reset()
		b.reply(chatID, "👀 Watching "+shortAddr(input)+". You will hear about its trades.")
	}
}

func (b *Bot) textRestoreKey(userID string, chatID int64, sess *Session, input string) {
	w, err := blockchain.RestoreWallet(input)
	if err != nil {
		b.reply(chatID, "Could not read that key: "+err.Error()+"\nSend it again or press Cancel.")
		return
	}
	b.users.Update(userID, func(u *store.User) {
		u.Wallet = w.Address()
		u.Secret = w.Secret()
		u.AddHistory("Wallet restored")
	})
	sess.Reset()
	b.replyKB(chatID, "🔑 Wallet restored:\n"+w.Address(), mainMenuKeyboard(true))
}

func (b *Bot) textExecuteTrade(ctx context.Context, userID string, chatID int64, sess *Session, input string, buy bool) {
	amount, ok := parsePositive(input, 0)
	if !ok || amount <= 0 {
		b.reply(chatID, "Send a SOL amount greater than 0.")
		return
	}

	u := b.users.GetOrCreate(userID)
	mint := sess.TradeMint
	sess.Reset()

	var sig string
	var err error
	var verb string
	if buy {
		verb = "Bought"
		sig, err = b.trader.Buy(ctx, u.Secret, mint, amount)
	} else {
		verb = "Sold"
		sig, err = b.trader.Sell(ctx, u.Secret, mint, amount)
	}
	if err != nil {
		log.Warn().Err(err).Str("user", userID).Str("mint", mint).Msg("manual trade failed")
		b.reply(chatID, blockchain.HumanErrorWithAction(err))
		return
	}

	b.users.Update(userID, func(u *store.User) {
		u.Trades++
		u.AddHistory(fmt.Sprintf("%s %.4f SOL of %s (tx %s)", verb, amount, mint, sig))
	})
	b.reply(chatID, fmt.Sprintf("✅ %s %.4f SOL of %s\nTx: %s", verb, amount, shortAddr(mint), sig))
}

func parsePositive(input string, min float64) (float64, bool) {
	v, ok := token.ParseNumber(input)
	if !ok || v < min {
		return 0, false
	}
	return v, true
}

func parseFloatList(input string) ([]float64, error) {
	parts := strings.Split(input, ",")
	var out []float64
	for _, p := range parts {
		v, ok := token.ParseNumber(strings.TrimSpace(p))
		if !ok {
			return nil, fmt.Errorf("could not read %q as a number", strings.TrimSpace(p))
		}
		out = append(out, v)
	}
	return out, nil
}

func parsePercentList(input string) ([]float64, error) {
	vals, err := parseFloatList(input)
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 || len(vals) > 3 {
		return nil, fmt.Errorf("send between 1 and 3 stages")
	}
	for i, v := range vals {
		if v < 1 || v > 20 {
			return nil, fmt.Errorf("each stage must be between 1 and 20 percent")
		}
		if i > 0 && v <= vals[i-1] {
			return nil, fmt.Errorf("stages must be ascending")
		}
	}
	return vals, nil
}
