package notify

// Telegram pushes batch results to a chat. The notifier is optional: a nil
// *Telegram is safe to call and sends nothing, so callers do not need to
// guard every send.

import (
	"fmt"

	"sonic-minter/internal/infra/log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram authorizes the bot against the Telegram API. An empty token
// returns a nil notifier without error.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if token == "" {
		return nil, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}
	log.LogSuccess("Telegram bot authorized", zap.String("username", bot.Self.UserName))

	return &Telegram{bot: bot, chatID: chatID}, nil
}

// Send delivers a plain-text message to the configured chat. Delivery
// failures are logged, never returned; notifications must not affect the
// mint outcome.
func (t *Telegram) Send(text string) {
	if t == nil || t.bot == nil || text == "" {
		return
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		log.LogError("Failed to send telegram notification", zap.Error(err))
	}
}
