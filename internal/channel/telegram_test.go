package channel

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	sent tgbotapi.Chattable
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = c
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	return tgbotapi.Message{MessageID: 77}, nil
}

func TestTelegramSender_Send(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{}
	sender := NewTelegramSenderWithBot(bot)

	messageID, err := sender.Send(context.Background(), "123456789", "Price dropped 16.7%")

	require.NoError(t, err)
	assert.Equal(t, "77", messageID)

	msg, ok := bot.sent.(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(123456789), msg.ChatID)
	assert.Equal(t, "Price dropped 16.7%", msg.Text)
	assert.True(t, msg.DisableWebPagePreview)
}

func TestTelegramSender_Send_InvalidChatID(t *testing.T) {
	t.Parallel()

	sender := NewTelegramSenderWithBot(&fakeBot{})

	_, err := sender.Send(context.Background(), "not-a-number", "hello")

	assert.Error(t, err)
}

func TestTelegramSender_Send_BotError(t *testing.T) {
	t.Parallel()

	sender := NewTelegramSenderWithBot(&fakeBot{err: errors.New("forbidden: bot was blocked")})

	_, err := sender.Send(context.Background(), "123456789", "hello")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending telegram message")
}

func TestTelegramSender_Provider(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ProviderTelegram, NewTelegramSenderWithBot(&fakeBot{}).Provider())
}
