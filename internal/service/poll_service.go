package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pricewatch/backend/internal/fetcher"
	"github.com/pricewatch/backend/internal/model"
	"github.com/pricewatch/backend/internal/repository"
)

// PriceFetcher resolves a product URL into a structured fetch result.
type PriceFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Result, error)
}

// AlertFanOuter turns a fresh price snapshot into persisted alert rows.
type AlertFanOuter interface {
	FanOut(ctx context.Context, watch *model.Watchlist, snapshot *model.PriceSnapshot) ([]model.Alert, error)
}

// PollConfig holds configuration for the price poll loop
type PollConfig struct {
	// MinDelay is the minimum delay between fetching different watchlist entries
	MinDelay time.Duration
	// MaxDelay is the maximum delay between fetching different watchlist entries
	MaxDelay time.Duration
	// RetryConfig holds retry configuration for failed fetches
	RetryConfig fetcher.RetryConfig
}

// DefaultPollConfig returns the default poll configuration
func DefaultPollConfig() PollConfig {
	return PollConfig{
		MinDelay:    2 * time.Second,
		MaxDelay:    5 * time.Second,
		RetryConfig: fetcher.DefaultRetryConfig(),
	}
}

// PollResult holds the outcome of polling a single watchlist entry
type PollResult struct {
	WatchlistID   int64
	ProductID     int64
	ASIN          string
	Price         decimal.Decimal
	AlertsCreated int
	Success       bool
	Error         error
	Duration      time.Duration
}

// PollService re-fetches prices for all active watchlist entries, records
// snapshots, and fans out alerts for qualifying drops.
type PollService struct {
	watchRepo    repository.WatchlistRepositoryInterface
	productRepo  repository.ProductRepositoryInterface
	snapshotRepo repository.SnapshotRepositoryInterface
	alerts       AlertFanOuter
	fetch        PriceFetcher
	config       PollConfig
	metrics      *fetcher.MetricsCollector
	logger       *slog.Logger
}

// NewPollService creates a new price poll service
func NewPollService(
	watchRepo repository.WatchlistRepositoryInterface,
	productRepo repository.ProductRepositoryInterface,
	snapshotRepo repository.SnapshotRepositoryInterface,
	alerts AlertFanOuter,
	fetch PriceFetcher,
	cfg PollConfig,
	logger *slog.Logger,
) *PollService {
	if logger == nil {
		logger = slog.Default()
	}

	return &PollService{
		watchRepo:    watchRepo,
		productRepo:  productRepo,
		snapshotRepo: snapshotRepo,
		alerts:       alerts,
		fetch:        fetch,
		config:       cfg,
		metrics:      fetcher.NewMetricsCollector(),
		logger:       logger,
	}
}

// Run polls every active watchlist entry with rate limiting between fetches.
// A failure on one entry never aborts the batch.
func (s *PollService) Run(ctx context.Context) ([]PollResult, error) {
	watches, err := s.watchRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active watchlist entries: %w", err)
	}

	s.logger.Info("Starting price poll",
		slog.Int("watch_count", len(watches)),
	)

	results := make([]PollResult, 0, len(watches))

	for i := range watches {
		// Check context before fetching
		select {
		case <-ctx.Done():
			s.logger.Warn("Price poll cancelled",
				slog.Int("completed", i),
				slog.Int("total", len(watches)),
			)
			s.metrics.FinishRun()
			return results, ctx.Err()
		default:
		}

		result := s.pollWatch(ctx, &watches[i])
		results = append(results, result)

		// Add delay between entries (except for the last one)
		if i < len(watches)-1 {
			delay := s.randomDelay()
			s.logger.Debug("Waiting before next watchlist entry",
				slog.Int64("next_watchlist_id", watches[i+1].ID),
				slog.Duration("delay", delay),
			)

			select {
			case <-ctx.Done():
				s.metrics.FinishRun()
				return results, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	s.metrics.FinishRun()

	// Log summary
	var successCount, failCount, totalAlerts int
	for _, r := range results {
		if r.Success {
			successCount++
			totalAlerts += r.AlertsCreated
		} else {
			failCount++
		}
	}

	s.logger.Info("Price poll completed",
		slog.Int("successful", successCount),
		slog.Int("failed", failCount),
		slog.Int("alerts_created", totalAlerts),
	)

	return results, nil
}

// pollWatch fetches the current price for a single watchlist entry with retry
// logic, records the snapshot, and fans out alerts.
func (s *PollService) pollWatch(ctx context.Context, watch *model.Watchlist) PollResult {
	product, err := s.productRepo.GetByID(ctx, watch.ProductID)
	if err != nil {
		s.logger.Error("Failed to load product for watchlist entry",
			slog.Int64("watchlist_id", watch.ID),
			slog.Int64("product_id", watch.ProductID),
			slog.String("error", err.Error()),
		)
		return PollResult{
			WatchlistID: watch.ID,
			ProductID:   watch.ProductID,
			Error:       fmt.Errorf("loading product: %w", err),
		}
	}

	s.logger.Info("Polling product",
		slog.Int64("watchlist_id", watch.ID),
		slog.String("asin", product.SourceProductID),
	)

	s.metrics.StartFetch(product.SourceProductID)
	startTime := time.Now()

	var fetched *fetcher.Result

	err = fetcher.WithRetry(ctx, s.config.RetryConfig, s.logger, func() error {
		var fetchErr error
		fetched, fetchErr = s.fetch.Fetch(ctx, product.ProductURL)
		return fetchErr
	})

	duration := time.Since(startTime)

	if err != nil {
		s.metrics.RecordFailure(product.SourceProductID, err)
		s.logger.Error("Failed to fetch product price",
			slog.Int64("watchlist_id", watch.ID),
			slog.String("asin", product.SourceProductID),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)

		return PollResult{
			WatchlistID: watch.ID,
			ProductID:   product.ID,
			ASIN:        product.SourceProductID,
			Error:       err,
			Duration:    duration,
		}
	}

	s.metrics.RecordSuccess(product.SourceProductID, fetched.Price)

	if err := s.productRepo.UpdatePrice(ctx, product.ID, fetched.Price); err != nil {
		return PollResult{
			WatchlistID: watch.ID,
			ProductID:   product.ID,
			ASIN:        product.SourceProductID,
			Error:       fmt.Errorf("updating product price: %w", err),
			Duration:    duration,
		}
	}

	snapshot := &model.PriceSnapshot{
		ProductID:  product.ID,
		Price:      fetched.Price,
		InStock:    fetched.InStock,
		SourceURL:  fetched.URL,
		Confidence: fetched.Confidence,
	}
	if err := s.snapshotRepo.Create(ctx, snapshot); err != nil {
		return PollResult{
			WatchlistID: watch.ID,
			ProductID:   product.ID,
			ASIN:        product.SourceProductID,
			Error:       fmt.Errorf("recording price snapshot: %w", err),
			Duration:    duration,
		}
	}

	alerts, err := s.alerts.FanOut(ctx, watch, snapshot)
	if err != nil {
		return PollResult{
			WatchlistID: watch.ID,
			ProductID:   product.ID,
			ASIN:        product.SourceProductID,
			Price:       fetched.Price,
			Error:       fmt.Errorf("fanning out alerts: %w", err),
			Duration:    duration,
		}
	}

	s.logger.Info("Polled product",
		slog.Int64("watchlist_id", watch.ID),
		slog.String("asin", product.SourceProductID),
		slog.String("price", fetched.Price.String()),
		slog.Int("alerts_created", len(alerts)),
		slog.Duration("duration", duration),
	)

	return PollResult{
		WatchlistID:   watch.ID,
		ProductID:     product.ID,
		ASIN:          product.SourceProductID,
		Price:         fetched.Price,
		AlertsCreated: len(alerts),
		Success:       true,
		Duration:      duration,
	}
}

// GetMetrics returns the metrics collector
func (s *PollService) GetMetrics() *fetcher.MetricsCollector {
	return s.metrics
}

// GetHealthStatus returns the current health of the poll pipeline
func (s *PollService) GetHealthStatus(ctx context.Context, nextRunTime time.Time) fetcher.HealthStatus {
	watches, err := s.watchRepo.ListActive(ctx)
	if err != nil {
		return s.metrics.GetHealthStatus(nextRunTime, 0)
	}
	return s.metrics.GetHealthStatus(nextRunTime, len(watches))
}

// randomDelay returns a random delay between MinDelay and MaxDelay
func (s *PollService) randomDelay() time.Duration {
	if s.config.MaxDelay <= s.config.MinDelay {
		return s.config.MinDelay
	}
	diff := s.config.MaxDelay - s.config.MinDelay
	jitter := time.Duration(rand.Int63n(int64(diff)))
	return s.config.MinDelay + jitter
}
