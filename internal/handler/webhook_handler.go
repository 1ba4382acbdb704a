package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/pricewatch/backend/internal/apperror"
	"github.com/pricewatch/backend/internal/channel"
)

// WebhookConfig carries the verification material for the inbound channels.
type WebhookConfig struct {
	// MetaVerifyToken is matched against hub.verify_token on the
	// subscription handshake.
	MetaVerifyToken string
	// MetaAppSecret signs inbound payloads (X-Hub-Signature-256).
	MetaAppSecret string
	// SkipSignatureCheck disables HMAC verification, for local development
	// where requests are hand-rolled.
	SkipSignatureCheck bool
	// TelegramSecret is matched against X-Telegram-Bot-Api-Secret-Token
	// when set.
	TelegramSecret string
}

// WebhookHandler receives inbound chat messages from the channel providers,
// dispatches them to the command interpreter, and replies through the router.
// Processing failures are logged and swallowed so the provider never retries
// a delivery because of them.
type WebhookHandler struct {
	commands WebhookServiceInterface
	sender   MessageSenderInterface
	config   WebhookConfig
	logger   *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(commands WebhookServiceInterface, sender MessageSenderInterface, cfg WebhookConfig, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookHandler{
		commands: commands,
		sender:   sender,
		config:   cfg,
		logger:   logger,
	}
}

// VerifyMeta godoc
// @Summary Meta webhook subscription handshake
// @Description Echoes hub.challenge when the verify token matches
// @Tags webhooks
// @Produce plain
// @Param hub.mode query string true "Subscription mode"
// @Param hub.verify_token query string true "Verify token"
// @Param hub.challenge query string true "Challenge to echo"
// @Success 200 {string} string
// @Failure 403 {object} ErrorResponse
// @Router /webhooks/meta [get]
func (h *WebhookHandler) VerifyMeta(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")
	challenge := query.Get("hub.challenge")

	if mode != "subscribe" || token != h.config.MetaVerifyToken || challenge == "" {
		respondAppError(w, apperror.Forbidden("Webhook verification failed"))
		return
	}

	respondText(w, http.StatusOK, challenge)
}

// metaWebhookPayload mirrors the slice of the Meta webhook envelope this
// service consumes: entry -> changes -> value -> messages.
type metaWebhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ReceiveMeta godoc
// @Summary Receive WhatsApp messages from the Meta webhook
// @Description Dispatches each text message to the command interpreter and acknowledges regardless of processing outcome
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 401 {object} ErrorResponse
// @Router /webhooks/meta [post]
func (h *WebhookHandler) ReceiveMeta(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondAppError(w, apperror.BadRequest("invalid request body"))
		return
	}

	if !h.config.SkipSignatureCheck {
		if !verifyMetaSignature(h.config.MetaAppSecret, body, r.Header.Get("X-Hub-Signature-256")) {
			respondAppError(w, apperror.Unauthorized("Invalid signature"))
			return
		}
	}

	var payload metaWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		respondAppError(w, apperror.BadRequest("invalid request body"))
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.From == "" || msg.Text.Body == "" {
					continue
				}
				h.processMessage(r.Context(), msg.From, msg.Text.Body, channel.ProviderWhatsApp)
			}
		}
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// telegramUpdate mirrors the slice of a Telegram update this service
// consumes. Edited messages are treated like new ones.
type telegramUpdate struct {
	Message       *telegramMessage `json:"message"`
	EditedMessage *telegramMessage `json:"edited_message"`
}

type telegramMessage struct {
	Text string `json:"text"`
	Chat struct {
		ID int64 `json:"id"`
	} `json:"chat"`
}

// ReceiveTelegram godoc
// @Summary Receive Telegram updates
// @Description Dispatches message text to the command interpreter and acknowledges regardless of processing outcome
// @Tags webhooks
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 401 {object} ErrorResponse
// @Router /webhooks/telegram [post]
func (h *WebhookHandler) ReceiveTelegram(w http.ResponseWriter, r *http.Request) {
	if h.config.TelegramSecret != "" &&
		r.Header.Get("X-Telegram-Bot-Api-Secret-Token") != h.config.TelegramSecret {
		respondAppError(w, apperror.Unauthorized("Invalid Telegram webhook secret"))
		return
	}

	var update telegramUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondAppError(w, apperror.BadRequest("invalid request body"))
		return
	}

	msg := update.Message
	if msg == nil {
		msg = update.EditedMessage
	}
	if msg != nil && msg.Text != "" && msg.Chat.ID != 0 {
		h.processMessage(r.Context(), channel.UserKeyForChat(msg.Chat.ID), msg.Text, channel.ProviderTelegram)
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// processMessage dispatches one inbound message and sends the reply back on
// the same channel. Failures never propagate to the webhook response.
func (h *WebhookHandler) processMessage(ctx context.Context, userKey, text, providerName string) {
	reply, err := h.commands.HandleMessage(ctx, userKey, text)
	if err != nil {
		h.logger.Error("Failed to process inbound message",
			slog.String("provider", providerName),
			slog.String("user_key", userKey),
			slog.String("error", err.Error()),
		)
		return
	}

	if _, _, err := h.sender.Send(ctx, userKey, reply); err != nil {
		h.logger.Error("Failed to send reply",
			slog.String("provider", providerName),
			slog.String("user_key", userKey),
			slog.String("error", err.Error()),
		)
	}
}

// verifyMetaSignature checks an X-Hub-Signature-256 header value against the
// raw request body.
func verifyMetaSignature(appSecret string, body []byte, header string) bool {
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.TrimPrefix(header, prefix)))
}
