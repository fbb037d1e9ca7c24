package bot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"solana-honey-bot/internal/blockchain"
	"solana-honey-bot/internal/store"
	"solana-honey-bot/internal/token"
)

// minMessageGap drops messages arriving faster than a human types.
const minMessageGap = time.Second

// Sender is the slice of the Telegram API the bot writes through.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Trader executes swaps and reads balances for a stored secret.
type Trader interface {
	Buy(ctx context.Context, secret, mint string, solAmount float64) (string, error)
	Sell(ctx context.Context, secret, mint string, solAmount float64) (string, error)
	SellTokens(ctx context.Context, secret, mint string, rawAmount uint64) (string, error)
	BalanceSOL(ctx context.Context, secret string) (float64, error)
}

// Holdings lists a wallet's SPL token accounts.
type Holdings interface {
	GetTokenAccountsByOwner(ctx context.Context, owner, mint string) ([]blockchain.TokenAccountInfo, error)
}

// Lists serves the cached discovery token list.
type Lists interface {
	Get(ctx context.Context) []token.Info
}

// Bot is the Telegram front end. All durable state lives in the user store;
// the bot only keeps per-chat dialog sessions.
type Bot struct {
	api      Sender
	users    store.Repository
	lists    Lists
	trader   Trader
	holdings Holdings
	botName  string

	sessions *sessions
}

// New wires the bot. botName is the @username used in referral links.
func New(api Sender, users store.Repository, lists Lists, trader Trader, holdings Holdings, botName string) *Bot {
	return &Bot{
		api:      api,
		users:    users,
		lists:    lists,
		trader:   trader,
		holdings: holdings,
		botName:  botName,
		sessions: newSessions(),
	}
}

// Run consumes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	log.Info().Str("bot", b.botName).Msg("telegram bot started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.HandleUpdate(ctx, update)
		}
	}
}

// HandleUpdate routes one update. Exported so the poll loop and tests share
// the same path.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)

	case update.Message != nil:
		msg := update.Message
		userID := strconv.FormatInt(msg.Chat.ID, 10)

		if b.tooFast(userID) {
			log.Debug().Str("user", userID).Msg("message dropped by spam gate")
			return
		}

		if msg.IsCommand() {
			b.handleCommand(ctx, msg)
			return
		}
		b.handleText(ctx, msg)
	}
}

// tooFast applies the per-user message gate and records the arrival.
func (b *Bot) tooFast(userID string) bool {
	now := time.Now()
	fast := false
	b.users.Update(userID, func(u *store.User) {
		if u.LastMessageAt > 0 && now.UnixMilli()-u.LastMessageAt < minMessageGap.Milliseconds() {
			fast = true
			return
		}
		u.TouchMessage(now)
	})
	return fast
}

// Notify implements the notifier side used by the background engines.
func (b *Bot) Notify(userID, text string) {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		log.Warn().Str("user", userID).Msg("notify: bad user id")
		return
	}
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		log.Warn().Err(err).Msg("telegram send failed")
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyKB(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	b.send(msg)
}

func (b *Bot) ackCallback(cq *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		log.Debug().Err(err).Msg("callback ack failed")
	}
}

func shortAddr(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return fmt.Sprintf("%s…%s", addr[:6], addr[len(addr)-4:])
}
