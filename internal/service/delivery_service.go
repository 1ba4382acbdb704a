package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pricewatch/backend/internal/model"
	"github.com/pricewatch/backend/internal/repository"
	"github.com/pricewatch/backend/pkg/currency"
)

// MessageRouter delivers outbound text to the channel matching a user key.
type MessageRouter interface {
	Send(ctx context.Context, userKey, text string) (provider, messageID string, err error)
}

// DeliveryService drains pending alerts to the outbound messaging channels
// and records a notification log row per attempt.
type DeliveryService struct {
	alertRepo   repository.AlertRepositoryInterface
	watchRepo   repository.WatchlistRepositoryInterface
	userRepo    repository.UserRepositoryInterface
	productRepo repository.ProductRepositoryInterface
	familyRepo  repository.FamilyRepositoryInterface
	router      MessageRouter
	logger      *slog.Logger
}

// NewDeliveryService creates a new alert delivery service
func NewDeliveryService(
	alertRepo repository.AlertRepositoryInterface,
	watchRepo repository.WatchlistRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
	familyRepo repository.FamilyRepositoryInterface,
	router MessageRouter,
	logger *slog.Logger,
) *DeliveryService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DeliveryService{
		alertRepo:   alertRepo,
		watchRepo:   watchRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		familyRepo:  familyRepo,
		router:      router,
		logger:      logger,
	}
}

// Run drains all pending alerts oldest-first and returns the number sent.
// A failed or undeliverable alert never blocks the rest of the batch.
func (s *DeliveryService) Run(ctx context.Context) (int, error) {
	alerts, err := s.alertRepo.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing pending alerts: %w", err)
	}

	s.logger.Info("Starting alert delivery",
		slog.Int("pending_count", len(alerts)),
	)

	sent := 0

	for i := range alerts {
		select {
		case <-ctx.Done():
			s.logger.Warn("Alert delivery cancelled",
				slog.Int("completed", i),
				slog.Int("total", len(alerts)),
			)
			return sent, ctx.Err()
		default:
		}

		delivered, err := s.deliverAlert(ctx, &alerts[i])
		if err != nil {
			s.logger.Error("Failed to deliver alert",
				slog.Int64("alert_id", alerts[i].ID),
				slog.String("error", err.Error()),
			)
			continue
		}
		if delivered {
			sent++
		}
	}

	s.logger.Info("Alert delivery completed",
		slog.Int("sent", sent),
		slog.Int("pending_count", len(alerts)),
	)

	return sent, nil
}

// deliverAlert renders and sends a single alert. It returns true when the
// message went out, false when the alert was skipped or marked failed. An
// error return means transient infrastructure trouble and leaves the alert
// pending for the next run.
func (s *DeliveryService) deliverAlert(ctx context.Context, alert *model.Alert) (bool, error) {
	if _, err := s.watchRepo.GetByID(ctx, alert.WatchlistID); err != nil {
		if errors.Is(err, repository.ErrWatchlistNotFound) {
			s.logger.Warn("Skipping alert without watchlist entry",
				slog.Int64("alert_id", alert.ID),
				slog.Int64("watchlist_id", alert.WatchlistID),
			)
			return false, nil
		}
		return false, fmt.Errorf("loading watchlist entry: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, alert.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("Skipping alert without user",
				slog.Int64("alert_id", alert.ID),
				slog.Int64("user_id", alert.UserID),
			)
			return false, nil
		}
		return false, fmt.Errorf("loading user: %w", err)
	}

	productName := "Tracked item"
	productURL := ""
	product, err := s.productRepo.GetByID(ctx, alert.ProductID)
	switch {
	case err == nil:
		productName = product.CanonicalName
		productURL = product.ProductURL
	case errors.Is(err, repository.ErrProductNotFound):
	default:
		return false, fmt.Errorf("loading product: %w", err)
	}

	memberName := ""
	relationText := ""
	if alert.FamilyMemberID != nil {
		member, err := s.familyRepo.GetMemberByID(ctx, *alert.FamilyMemberID)
		switch {
		case err == nil:
			memberName = member.Nickname
			if member.Relation != nil && *member.Relation != "" {
				relationText = fmt.Sprintf(" (%s)", *member.Relation)
			}
		case errors.Is(err, repository.ErrFamilyMemberNotFound):
			memberName = "family member"
		default:
			return false, fmt.Errorf("loading family member: %w", err)
		}
	}

	message := renderAlertMessage(alert, productName, productURL, memberName, relationText)

	provider, messageID, err := s.router.Send(ctx, user.UserKey, message)
	if err != nil {
		if markErr := s.alertRepo.MarkFailed(ctx, alert.ID); markErr != nil {
			s.logger.Error("Failed to mark alert as failed",
				slog.Int64("alert_id", alert.ID),
				slog.String("error", markErr.Error()),
			)
		}

		errText := err.Error()
		failLog := &model.NotificationLog{
			AlertID:  alert.ID,
			Provider: provider,
			Payload:  &errText,
			Success:  false,
		}
		if logErr := s.alertRepo.LogNotification(ctx, failLog); logErr != nil {
			s.logger.Error("Failed to record notification log",
				slog.Int64("alert_id", alert.ID),
				slog.String("error", logErr.Error()),
			)
		}

		s.logger.Warn("Alert delivery failed",
			slog.Int64("alert_id", alert.ID),
			slog.String("provider", provider),
			slog.String("error", err.Error()),
		)

		return false, nil
	}

	if err := s.alertRepo.MarkSent(ctx, alert.ID, time.Now().UTC()); err != nil {
		s.logger.Error("Failed to mark alert as sent",
			slog.Int64("alert_id", alert.ID),
			slog.String("error", err.Error()),
		)
	}

	sentLog := &model.NotificationLog{
		AlertID:  alert.ID,
		Provider: provider,
		Payload:  &message,
		Success:  true,
	}
	if messageID != "" {
		sentLog.ProviderMessageID = &messageID
	}
	if err := s.alertRepo.LogNotification(ctx, sentLog); err != nil {
		s.logger.Error("Failed to record notification log",
			slog.Int64("alert_id", alert.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("Delivered alert",
		slog.Int64("alert_id", alert.ID),
		slog.String("alert_type", alert.AlertType),
		slog.String("provider", provider),
	)

	return true, nil
}

// renderAlertMessage builds the outbound text for an alert. Family alerts
// name the mapped member; both variants append the product URL when known.
func renderAlertMessage(alert *model.Alert, productName, productURL, memberName, relationText string) string {
	var b strings.Builder

	if alert.AlertType == model.AlertTypeFamily {
		fmt.Fprintf(&b, "Family price drop for %s%s\n%s\nDrop: %.1f%%\nOld: %s\nNow: %s",
			memberName, relationText, productName, alert.DropPct,
			currency.Rupees(alert.OldPrice), currency.Rupees(alert.NewPrice))
	} else {
		fmt.Fprintf(&b, "Price dropped %.1f%%\n%s\nOld: %s\nNow: %s",
			alert.DropPct, productName,
			currency.Rupees(alert.OldPrice), currency.Rupees(alert.NewPrice))
	}

	if productURL != "" {
		fmt.Fprintf(&b, "\n%s", productURL)
	}

	return b.String()
}
