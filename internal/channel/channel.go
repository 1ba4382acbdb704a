// Package channel delivers outbound text messages to chat providers.
//
// Recipients are addressed by user key: a bare phone number routes to
// WhatsApp, a "tg:"-prefixed chat id routes to Telegram.
package channel

import (
	"context"
	"errors"
	"strconv"
	"strings"
)

// Provider names, recorded on notification logs.
const (
	ProviderWhatsApp = "meta_whatsapp"
	ProviderTelegram = "telegram"
)

const TelegramPrefix = "tg:"

var ErrNoSender = errors.New("no sender configured for recipient")

// Sender delivers one text message and returns the provider's message id.
type Sender interface {
	Provider() string
	Send(ctx context.Context, recipient, text string) (string, error)
}

// IsTelegramKey reports whether a user key addresses a Telegram chat.
func IsTelegramKey(userKey string) bool {
	return strings.HasPrefix(userKey, TelegramPrefix)
}

// UserKeyForChat builds the user key for a Telegram chat id.
func UserKeyForChat(chatID int64) string {
	return TelegramPrefix + strconv.FormatInt(chatID, 10)
}

// Router picks the sender for a user key and strips channel prefixes.
type Router struct {
	whatsapp Sender
	telegram Sender
}

func NewRouter(whatsapp, telegram Sender) *Router {
	return &Router{whatsapp: whatsapp, telegram: telegram}
}

// Send routes text to the recipient's channel. It returns the provider name
// and the provider message id for the notification log. The provider name is
// set even on failure so failed deliveries log which channel was attempted.
func (r *Router) Send(ctx context.Context, userKey, text string) (provider, messageID string, err error) {
	sender := r.whatsapp
	provider = ProviderWhatsApp
	recipient := userKey
	if IsTelegramKey(userKey) {
		sender = r.telegram
		provider = ProviderTelegram
		recipient = strings.TrimPrefix(userKey, TelegramPrefix)
	}
	if sender == nil {
		return provider, "", ErrNoSender
	}

	messageID, err = sender.Send(ctx, recipient, text)
	return sender.Provider(), messageID, err
}
