package handler

import (
	"context"
	"time"

	"github.com/pricewatch/backend/internal/fetcher"
)

// WebhookServiceInterface for handler testing
type WebhookServiceInterface interface {
	HandleMessage(ctx context.Context, userKey, body string) (string, error)
}

// MessageSenderInterface for handler testing
type MessageSenderInterface interface {
	Send(ctx context.Context, userKey, text string) (provider, messageID string, err error)
}

// WatchlistServiceInterface for handler testing
type WatchlistServiceInterface interface {
	AddItem(ctx context.Context, userKey, link string, nickname, relation *string, quantity int) (string, error)
	ListWishlist(ctx context.Context, userKey string, includeFamilyMapped bool) (string, error)
	FamilyWishlist(ctx context.Context, userKey string) (string, error)
}

// SchedulerInterface for handler testing
type SchedulerInterface interface {
	RunPollNow()
	RunDeliveryNow()
	GetNextPollRun() time.Time
	GetNextDeliveryRun() time.Time
}

// PollStatusInterface for handler testing
type PollStatusInterface interface {
	GetHealthStatus(ctx context.Context, nextRunTime time.Time) fetcher.HealthStatus
}
