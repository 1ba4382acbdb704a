// Package scheduler provides cron-based scheduling for the price poll and
// alert delivery jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/pricewatch/backend/internal/service"
	"github.com/robfig/cron/v3"
)

// Config holds the scheduler configuration
type Config struct {
	// PollSchedule is a cron expression for the price poll (e.g., "0 */3 * * *" for every 3 hours)
	PollSchedule string
	// DeliverySchedule is a cron expression for the alert delivery sweep
	DeliverySchedule string
	// PollTimeout is the maximum duration for a complete poll cycle
	PollTimeout time.Duration
	// DeliveryTimeout is the maximum duration for a delivery sweep
	DeliveryTimeout time.Duration
	// Enabled determines if the scheduler should run
	Enabled bool
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		PollSchedule:     "0 */3 * * *", // Every 3 hours at minute 0
		DeliverySchedule: "*/5 * * * *", // Every 5 minutes
		PollTimeout:      30 * time.Minute,
		DeliveryTimeout:  5 * time.Minute,
		Enabled:          true,
	}
}

// Scheduler manages the recurring poll and delivery jobs
type Scheduler struct {
	cron            *cron.Cron
	pollService     *service.PollService
	deliveryService *service.DeliveryService
	config          Config
	logger          *slog.Logger
	pollEntryID     cron.EntryID
	deliveryEntryID cron.EntryID
}

// New creates a new Scheduler instance
func New(cfg Config, pollService *service.PollService, deliveryService *service.DeliveryService, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cron:            cron.New(cron.WithSeconds()),
		pollService:     pollService,
		deliveryService: deliveryService,
		config:          cfg,
		logger:          logger,
	}
}

// Start begins the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Scheduler is disabled, skipping start")
		return nil
	}

	// Convert standard cron (5 fields) to cron with seconds (6 fields)
	// Add "0" at the beginning for seconds
	pollID, err := s.cron.AddFunc("0 "+s.config.PollSchedule, func() {
		s.runPollJob()
	})
	if err != nil {
		return err
	}
	s.pollEntryID = pollID

	deliveryID, err := s.cron.AddFunc("0 "+s.config.DeliverySchedule, func() {
		s.runDeliveryJob()
	})
	if err != nil {
		return err
	}
	s.deliveryEntryID = deliveryID

	s.cron.Start()

	s.logger.Info("Scheduler started",
		slog.String("poll_schedule", s.config.PollSchedule),
		slog.String("delivery_schedule", s.config.DeliverySchedule),
		slog.Duration("poll_timeout", s.config.PollTimeout),
		slog.Duration("delivery_timeout", s.config.DeliveryTimeout),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Stopping scheduler...")
	return s.cron.Stop()
}

// RunPollNow triggers an immediate poll run (useful for manual triggers)
func (s *Scheduler) RunPollNow() {
	go s.runPollJob()
}

// RunDeliveryNow triggers an immediate delivery sweep
func (s *Scheduler) RunDeliveryNow() {
	go s.runDeliveryJob()
}

// runPollJob executes one poll cycle over all active watchlist entries
func (s *Scheduler) runPollJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.PollTimeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Info("Starting scheduled poll job",
		slog.Time("start_time", startTime),
	)

	results, err := s.pollService.Run(ctx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Poll job failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		return
	}

	succeeded := 0
	alerts := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
		alerts += r.AlertsCreated
	}

	s.logger.Info("Poll job completed successfully",
		slog.Int("items_polled", len(results)),
		slog.Int("items_succeeded", succeeded),
		slog.Int("alerts_created", alerts),
		slog.Duration("duration", duration),
	)
}

// runDeliveryJob executes one delivery sweep over pending alerts
func (s *Scheduler) runDeliveryJob() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.DeliveryTimeout)
	defer cancel()

	startTime := time.Now()
	s.logger.Info("Starting scheduled delivery job",
		slog.Time("start_time", startTime),
	)

	sent, err := s.deliveryService.Run(ctx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Delivery job failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration),
		)
		return
	}

	s.logger.Info("Delivery job completed successfully",
		slog.Int("alerts_sent", sent),
		slog.Duration("duration", duration),
	)
}

// GetNextPollRun returns the next scheduled poll time
func (s *Scheduler) GetNextPollRun() time.Time {
	if s.pollEntryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.pollEntryID).Next
}

// GetLastPollRun returns the last poll run time
func (s *Scheduler) GetLastPollRun() time.Time {
	if s.pollEntryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.pollEntryID).Prev
}

// GetNextDeliveryRun returns the next scheduled delivery time
func (s *Scheduler) GetNextDeliveryRun() time.Time {
	if s.deliveryEntryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.deliveryEntryID).Next
}

// IsRunning returns true if the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}
