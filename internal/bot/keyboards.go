package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data values. Kept short: Telegram caps callback data at 64 bytes
// and copy-remove callbacks carry a wallet address behind the prefix.
const (
	cbCreateWallet  = "create_wallet"
	cbRestoreWallet = "restore_wallet"
	cbBalance       = "balance"
	cbHoneySetup    = "honey_setup"
	cbHoneyList     = "honey_list"
	cbSellAll       = "sell_all"
	cbSellAllYes    = "sell_all_yes"
	cbSellAllNo     = "sell_all_no"
	cbCopyAdd       = "copy_add"
	cbCopyRemove    = "copy_rm:" // + wallet address
	cbInvite        = "invite"
	cbRefreshTokens = "refresh_tokens"
	cbBuy           = "buy"
	cbSell          = "sell"
	cbStrategy      = "set_strategy"
	cbActivity      = "show_activity"
	cbCancel        = "cancel"
)

func mainMenuKeyboard(hasWallet bool) tgbotapi.InlineKeyboardMarkup {
	if !hasWallet {
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🆕 Create wallet", cbCreateWallet),
				tgbotapi.NewInlineKeyboardButtonData("🔑 Restore wallet", cbRestoreWallet),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🎁 Invite friends", cbInvite),
			),
		)
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Balance", cbBalance),
			tgbotapi.NewInlineKeyboardButtonData("🍯 Honey setup", cbHoneySetup),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Buy", cbBuy),
			tgbotapi.NewInlineKeyboardButtonData("📉 Sell", cbSell),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 My positions", cbHoneyList),
			tgbotapi.NewInlineKeyboardButtonData("💸 Sell all", cbSellAll),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧭 Strategy", cbStrategy),
			tgbotapi.NewInlineKeyboardButtonData("🗒 Activity", cbActivity),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👀 Copy trade", cbCopyAdd),
			tgbotapi.NewInlineKeyboardButtonData("🎁 Invite friends", cbInvite),
		),
	)
}

func confirmSellAllKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Sell everything", cbSellAllYes),
			tgbotapi.NewInlineKeyboardButtonData("❌ Keep holdings", cbSellAllNo),
		),
	)
}

func cancelKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", cbCancel),
		),
	)
}

func tokensKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", cbRefreshTokens),
		),
	)
}
