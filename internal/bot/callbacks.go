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
)

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq.Message == nil {
		return
	}
	chatID := cq.Message.Chat.ID
	userID := strconv.FormatInt(chatID, 10)
	data := cq.Data

	log.Debug().Str("user", userID).Str("callback", data).Msg("callback received")
	b.ackCallback(cq)

	switch {
	case data == cbCreateWallet:
		b.cbCreateWallet(userID, chatID)
	case data == cbRestoreWallet:
		sess := b.sessions.get(chatID)
		sess.Reset()
		sess.State = StateRestoreKey
		b.replyKB(chatID, "Send your private key.\nAccepted: base64 export, solana-keygen JSON array, or a 64+ character passphrase.", cancelKeyboard())
	case data == cbBalance:
		b.cbBalance(ctx, userID, chatID)
	case data == cbHoneySetup:
		b.cbHoneySetup(userID, chatID)
	case data == cbHoneyList:
		b.cbHoneyList(userID, chatID)
	case data == cbSellAll:
		b.cbSellAll(ctx, userID, chatID)
	case data == cbSellAllYes:
		b.cbSellAllConfirmed(ctx, userID, chatID)
	case data == cbSellAllNo:
		b.sessions.get(chatID).Reset()
		b.reply(chatID, "Holdings kept.")
	case data == cbCopyAdd:
		b.cbCopyMenu(userID, chatID)
	case data == cbCopyAddMore:
		sess := b.sessions.get(chatID)
		sess.Reset()
		sess.State = StateCopyAdd
		b.replyKB(chatID, "Send the wallet address to copy:", cancelKeyboard())
	case strings.HasPrefix(data, cbCopyRemove):
		b.cbCopyRemove(userID, chatID, strings.TrimPrefix(data, cbCopyRemove))
	case data == cbInvite:
		b.cbInvite(userID, chatID)
	case data == cbBuy:
		b.cmdTrade(userID, chatID, StateBuyMint, "buy")
	case data == cbSell:
		b.cmdTrade(userID, chatID, StateSellMint, "sell")
	case data == cbStrategy:
		b.cmdStrategy(userID, chatID)
	case data == cbActivity:
		b.cmdHistory(userID, chatID)
	case data == cbRefreshTokens:
		b.cmdTokens(ctx, userID, chatID, true)
	case data == cbCancel:
		b.sessions.get(chatID).Reset()
		b.reply(chatID, "Cancelled.")
	}
}

func (b *Bot) cbCreateWallet(userID string, chatID int64) {
	u := b.users.GetOrCreate(userID)
	if u.HasWallet() {
		b.reply(chatID, "You already have a wallet:\n"+u.Wallet)
		return
	}

	w, err := blockchain.GenerateWallet()
	if err != nil {
		log.Error().Err(err).Str("user", userID).Msg("wallet generation failed")
		b.reply(chatID, "Wallet creation failed, please try again.")
		return
	}

	b.users.Update(userID, func(u *store.User) {
		u.Wallet = w.Address()
		u.Secret = w.Secret()
		u.AddHistory("Wallet created")
	})

	b.replyKB(chatID, "🆕 Wallet created:\n"+w.Address()+
		"\n\nDeposit SOL to start trading. Use /exportkey to back up the private key.",
		mainMenuKeyboard(true))
}

func (b *Bot) cbBalance(ctx context.Context, userID string, chatID int64) {
	u := b.users.GetOrCreate(userID)
	if !u.HasWallet() {
		b.replyKB(chatID, "No wallet yet.", mainMenuKeyboard(false))
		return
	}

	sol, err := b.trader.BalanceSOL(ctx, u.Secret)
	if err != nil {
		b.reply(chatID, "Could not read balance: "+blockchain.HumanError(err))
		return
	}
	b.reply(chatID, fmt.Sprintf("💰 %s\n%.6f SOL", u.Wallet, sol))
}

func (b *Bot) cbHoneySetup(userID string, chatID int64) {
	u := b.users.GetOrCreate(userID)
	if !u.HasWallet() {
		b.replyKB(chatID, "You need a wallet first.", mainMenuKeyboard(false))
		return
	}
	sess := b.sessions.get(chatID)
	sess.Reset()
	sess.State = StateHoneyMint
	b.replyKB(chatID, "Honey setup 1/4\nSend the mint address of the token to trade:", cancelKeyboard())
}

func (b *Bot) cbHoneyList(userID string, chatID int64) {
	u := b.users.GetOrCreate(userID)
	if len(u.HoneyTokens) == 0 {
		b.reply(chatID, "No honey positions. Use Honey setup or /tokens.")
		return
	}

	var sb strings.Builder
	sb.WriteString("🍯 Your positions:\n\n")
	for _, t := range u.HoneyTokens {
		sb.WriteString(shortAddr(t.Address))
		switch {
		case t.Exhausted():
			sb.WriteString(" - fully exited\n")
		case t.Armed():
			fired := 0
			for _, f := range t.Triggered {
				if f {
					fired++
				}
			}
			sb.WriteString(fmt.Sprintf(" - entry $%.8f, %d/%d stages fired\n", t.EntryPrice, fired, len(t.ProfitPercents)))
		default:
			sb.WriteString(fmt.Sprintf(" - waiting to buy %.4f SOL\n", t.BuyAmount))
		}
	}
	b.reply(chatID, sb.String())
}

// cbSellAll lists the wallet's holdings and asks for confirmation before
// liquidating anything.
func (b *Bot) cbSellAll(ctx context.Context, userID string, chatID int64) {
	u := b.users.GetOrCreate(userID)
	if !u.HasWallet() {
		b.replyKB(chatID, "No wallet yet.", mainMenuKeyboard(false))
		return
	}

	accounts, err := b.holdings.GetTokenAccountsByOwner(ctx, u.Wallet, "")
	if err != nil {
		b.reply(chatID, "Could not read holdings: "+blockchain.HumanError(err))
		return
	}

	var pending []Holding
	var sb strings.Builder
	for _, a := range accounts {
		if a.Amount == 0 {
			continue
		}
		pending = append(pending, Holding{Mint: a.Mint, Amount: a.Amount})
		sb.WriteString(fmt.Sprintf("%s  %d raw units\n", shortAddr(a.Mint), a.Amount))
	}
	if len(pending) == 0 {
		b.reply(chatID, "No token holdings to sell.")
		return
	}

	sess := b.sessions.get(chatID)
	sess.Reset()
	sess.PendingSellAll = pending
	b.replyKB(chatID, fmt.Sprintf("You hold %d token(s):\n%s\nSell everything into SOL?", len(pending), sb.String()),
		confirmSellAllKeyboard())
}

func (b *Bot) cbSellAllConfirmed(ctx context.Context, userID string, chatID int64) {
	sess := b.sessions.get(chatID)
	pending := sess.PendingSellAll
	sess.Reset()
	if len(pending) == 0 {
		b.reply(chatID, "Nothing queued. Use Sell all again.")
		return
	}

	u := b.users.GetOrCreate(userID)
	sold, failed := 0, 0
	for _, h := range pending {
		sig, err := b.trader.SellTokens(ctx, u.Secret, h.Mint, h.Amount)
		if err != nil {
			failed++
			log.Warn().Err(err).Str("user", userID).Str("mint", h.Mint).Msg("sell-all leg failed")
			continue
		}
		sold++
		b.users.Update(userID, func(u *store.User) {
			u.Trades++
			u.AddHistory(fmt.Sprintf("Sell-all: %s (tx %s)", h.Mint, sig))
		})
	}

	b.reply(chatID, fmt.Sprintf("💸 Sell-all done: %d sold, %d failed.", sold, failed))
}

func (b *Bot) cbCopyMenu(userID string, chatID int64) {
	u := b.users.GetOrCreate(userID)

	if len(u.CopiedWallets) > 0 {
		rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(u.CopiedWallets)+1)
		for _, w := range u.CopiedWallets {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗑 "+shortAddr(w), cbCopyRemove+w),
			))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Add wallet", cbCopyAddMore),
		))
		b.replyKB(chatID, "Wallets you copy (tap to stop):", tgbotapi.NewInlineKeyboardMarkup(rows...))
		return
	}

	sess := b.sessions.get(chatID)
	sess.Reset()
	sess.State = StateCopyAdd
	b.replyKB(chatID, "Send the wallet address to copy:", cancelKeyboard())
}

const cbCopyAddMore = "copy_add_more"

func (b *Bot) cbCopyRemove(userID string, chatID int64, wallet string) {
	removed := false
	b.users.Update(userID, func(u *store.User) {
		for i, w := range u.CopiedWallets {
			if w == wallet {
				u.CopiedWallets = append(u.CopiedWallets[:i], u.CopiedWallets[i+1:]...)
				u.AddHistory("Stopped copying " + wallet)
				removed = true
				return
			}
		}
	})
	if removed {
		b.reply(chatID, "Stopped copying "+shortAddr(wallet)+".")
	} else {
		b.reply(chatID, "That wallet was not on your list.")
	}
}

func (b *Bot) cbInvite(userID string, chatID int64) {
	u := b.users.GetOrCreate(userID)
	link := fmt.Sprintf("https://t.me/%s?start=%s", b.botName, userID)
	b.reply(chatID, fmt.Sprintf("🎁 Your invite link:\n%s\n\nFriends joined so far: %d", link, len(u.Referrals)))
}
