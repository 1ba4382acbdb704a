package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/model"
	"github.com/pricewatch/backend/internal/repository"
)

// AlertService decides when a price observation becomes alerts and fans them
// out to every interested recipient: the owner, plus one alert per family
// member the product is mapped to.
type AlertService struct {
	alertRepo   repository.AlertRepositoryInterface
	mappingRepo repository.MemberWishlistRepositoryInterface

	defaultMinDropPct float64
	cooldown          time.Duration
}

// NewAlertService creates a new AlertService. defaultMinDropPct is the global
// floor for alert thresholds; cooldownHours is how long an entry stays quiet
// after firing.
func NewAlertService(
	alertRepo repository.AlertRepositoryInterface,
	mappingRepo repository.MemberWishlistRepositoryInterface,
	defaultMinDropPct float64,
	cooldownHours int,
) *AlertService {
	return &AlertService{
		alertRepo:         alertRepo,
		mappingRepo:       mappingRepo,
		defaultMinDropPct: defaultMinDropPct,
		cooldown:          time.Duration(cooldownHours) * time.Hour,
	}
}

// calcDropPercent returns the percentage decrease from reference to current,
// clamped to 0 for non-positive reference prices.
func calcDropPercent(reference, current decimal.Decimal) float64 {
	if reference.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	return reference.Sub(current).Div(reference).InexactFloat64() * 100
}

// Evaluate applies the mute, cooldown, threshold and re-alert guards to one
// watchlist entry. It returns whether an alert should fire and the drop
// percentage from the reference price.
//
// The threshold is the larger of the entry's own minimum and the global
// default. Once an entry has fired, the price must fall at least the global
// default below the last alerted price before it may fire again; without this
// guard, noisy prices oscillating around the threshold would re-notify on
// every poll.
func (s *AlertService) Evaluate(watch *model.Watchlist, currentPrice decimal.Decimal, now time.Time) (bool, float64) {
	if watch.IsMuted || !watch.IsActive {
		return false, 0
	}
	if watch.CooldownUntil != nil && watch.CooldownUntil.After(now) {
		return false, 0
	}

	dropPct := calcDropPercent(watch.ReferencePrice, currentPrice)
	threshold := math.Max(watch.MinDropPct, s.defaultMinDropPct)
	if watch.LastAlertedPrice.Valid {
		incremental := calcDropPercent(watch.LastAlertedPrice.Decimal, currentPrice)
		if incremental < s.defaultMinDropPct {
			return false, 0
		}
	}
	return dropPct >= threshold, dropPct
}

// FanOut turns one snapshot into pending alerts: a self alert when the owner
// holds personal quantity, and a family alert per distinct member the product
// is mapped to. Out-of-stock snapshots and prices that already have an open
// alert produce nothing. Recording is all-or-nothing and advances the entry's
// last alerted price and cooldown only when at least one alert is emitted.
func (s *AlertService) FanOut(ctx context.Context, watch *model.Watchlist, snapshot *model.PriceSnapshot) ([]model.Alert, error) {
	now := time.Now().UTC()
	fire, dropPct := s.Evaluate(watch, snapshot.Price, now)
	if !fire || !snapshot.InStock {
		return nil, nil
	}

	open, err := s.alertRepo.HasOpenForPrice(ctx, watch.ID, snapshot.Price)
	if err != nil {
		return nil, fmt.Errorf("checking open alerts for watch %d: %w", watch.ID, err)
	}
	if open {
		return nil, nil
	}

	var alerts []model.Alert
	if watch.Quantity > 0 {
		alerts = append(alerts, model.Alert{
			WatchlistID: watch.ID,
			UserID:      watch.UserID,
			ProductID:   watch.ProductID,
			AlertType:   model.AlertTypeSelf,
			DropPct:     dropPct,
			OldPrice:    watch.ReferencePrice,
			NewPrice:    snapshot.Price,
			Status:      model.AlertStatusPending,
		})
	}

	mappings, err := s.mappingRepo.ListByProduct(ctx, watch.ProductID)
	if err != nil {
		return nil, fmt.Errorf("listing mappings for product %d: %w", watch.ProductID, err)
	}
	seen := make(map[int64]bool)
	for _, mapping := range mappings {
		if seen[mapping.FamilyMemberID] {
			continue
		}
		seen[mapping.FamilyMemberID] = true

		memberID := mapping.FamilyMemberID
		alerts = append(alerts, model.Alert{
			WatchlistID:    watch.ID,
			UserID:         watch.UserID,
			ProductID:      watch.ProductID,
			FamilyMemberID: &memberID,
			AlertType:      model.AlertTypeFamily,
			DropPct:        dropPct,
			OldPrice:       watch.ReferencePrice,
			NewPrice:       snapshot.Price,
			Status:         model.AlertStatusPending,
		})
	}

	if len(alerts) == 0 {
		return nil, nil
	}

	if err := s.alertRepo.CreateForWatch(ctx, alerts, snapshot.Price, now.Add(s.cooldown)); err != nil {
		return nil, fmt.Errorf("recording alerts for watch %d: %w", watch.ID, err)
	}
	return alerts, nil
}
