package channel

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// botAPI is the part of tgbotapi.BotAPI the sender uses; tests fake it.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSender sends text messages through the Telegram Bot API.
type TelegramSender struct {
	bot botAPI
}

func NewTelegramSender(botToken string) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &TelegramSender{bot: bot}, nil
}

// NewTelegramSenderWithBot is used by tests to inject a fake bot.
func NewTelegramSenderWithBot(bot botAPI) *TelegramSender {
	return &TelegramSender{bot: bot}
}

func (s *TelegramSender) Provider() string { return ProviderTelegram }

// Send delivers text to a chat id (the user key with its "tg:" prefix
// already stripped) and returns the message id Telegram assigns.
func (s *TelegramSender) Send(_ context.Context, recipient, text string) (string, error) {
	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid chat id %q: %w", recipient, err)
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true

	sent, err := s.bot.Send(msg)
	if err != nil {
		return "", fmt.Errorf("sending telegram message: %w", err)
	}
	return strconv.Itoa(sent.MessageID), nil
}
