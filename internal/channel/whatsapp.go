package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WhatsAppSender sends text messages through the Meta Graph API.
type WhatsAppSender struct {
	// BaseURL is overridable for tests.
	BaseURL string

	client        *http.Client
	accessToken   string
	phoneNumberID string
	graphVersion  string
}

func NewWhatsAppSender(accessToken, phoneNumberID, graphVersion string) *WhatsAppSender {
	return &WhatsAppSender{
		BaseURL:       "https://graph.facebook.com",
		client:        &http.Client{Timeout: 20 * time.Second},
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		graphVersion:  graphVersion,
	}
}

func (s *WhatsAppSender) Provider() string { return ProviderWhatsApp }

type whatsAppText struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type whatsAppPayload struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

type whatsAppResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// Send posts a text message to the recipient's phone number and returns the
// wamid Meta assigns to it.
func (s *WhatsAppSender) Send(ctx context.Context, recipient, text string) (string, error) {
	payload := whatsAppPayload{
		MessagingProduct: "whatsapp",
		To:               recipient,
		Type:             "text",
		Text:             whatsAppText{PreviewURL: false, Body: text},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", s.BaseURL, s.graphVersion, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending message: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("graph api status %d: %s", resp.StatusCode, respBody)
	}

	var parsed whatsAppResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(parsed.Messages) == 0 {
		return "", fmt.Errorf("graph api response without message id: %s", respBody)
	}
	return parsed.Messages[0].ID, nil
}
