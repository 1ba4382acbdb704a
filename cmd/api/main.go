package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/pricewatch/backend/docs"
	"github.com/pricewatch/backend/internal/channel"
	"github.com/pricewatch/backend/internal/config"
	"github.com/pricewatch/backend/internal/database"
	"github.com/pricewatch/backend/internal/dialog"
	"github.com/pricewatch/backend/internal/fetcher"
	"github.com/pricewatch/backend/internal/handler"
	applog "github.com/pricewatch/backend/internal/logger"
	"github.com/pricewatch/backend/internal/repository"
	"github.com/pricewatch/backend/internal/scheduler"
	"github.com/pricewatch/backend/internal/service"
)

// @title PriceWatch API
// @version 1.0
// @description Price tracking chat bot API. Receives WhatsApp and Telegram webhooks, manages Amazon price watchlists, and exposes operational endpoints for the poll and delivery pipelines.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@pricewatch.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

func main() {
	// Load configuration
	cfg := config.Load()

	// Structured logger, JSON in production
	logger := applog.Logger()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(db, cfg.MigrationsPath, logger); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Dialog store: Redis when configured, otherwise in-process
	var dialogStore dialog.Store
	if cfg.RedisURL != "" {
		redisClient, err := dialog.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer func() { _ = redisClient.Close() }()
		dialogStore = dialog.NewRedisStore(redisClient, cfg.DialogTTL)
		logger.Info("Dialog store ready", slog.String("backend", "redis"))
	} else {
		dialogStore = dialog.NewMemoryStore(cfg.DialogTTL)
		logger.Info("Dialog store ready", slog.String("backend", "memory"))
	}

	// Outbound channels. An unconfigured channel stays nil and the router
	// reports ErrNoSender for its recipients.
	var whatsappSender channel.Sender
	if cfg.Meta.AccessToken != "" && cfg.Meta.PhoneNumberID != "" {
		whatsappSender = channel.NewWhatsAppSender(cfg.Meta.AccessToken, cfg.Meta.PhoneNumberID, cfg.Meta.GraphVersion)
	} else {
		logger.Warn("WhatsApp sender not configured, outbound WhatsApp disabled")
	}

	var telegramSender channel.Sender
	if cfg.Telegram.BotToken != "" {
		tg, err := channel.NewTelegramSender(cfg.Telegram.BotToken)
		if err != nil {
			logger.Error("Failed to initialize Telegram sender", slog.String("error", err.Error()))
		} else {
			telegramSender = tg
		}
	} else {
		logger.Warn("Telegram sender not configured, outbound Telegram disabled")
	}

	router := channel.NewRouter(whatsappSender, telegramSender)

	fetch := fetcher.New(cfg.FetchTimeout)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	productRepo := repository.NewProductRepository(db)
	watchRepo := repository.NewWatchlistRepository(db)
	mappingRepo := repository.NewMemberWishlistRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// Initialize services
	commandService := service.NewCommandService(
		userRepo, familyRepo, productRepo, watchRepo, mappingRepo, snapshotRepo,
		dialogStore, fetch, cfg.DefaultMinDropPercent, cfg.DefaultCheckIntervalHours,
	)
	alertService := service.NewAlertService(alertRepo, mappingRepo, cfg.DefaultMinDropPercent, cfg.AlertCooldownHours)
	pollService := service.NewPollService(watchRepo, productRepo, snapshotRepo, alertService, fetch, service.DefaultPollConfig(), logger)
	deliveryService := service.NewDeliveryService(alertRepo, watchRepo, userRepo, productRepo, familyRepo, router, logger)

	// Scheduler drives the recurring poll and delivery jobs
	sched := scheduler.New(scheduler.Config{
		PollSchedule:     cfg.PollSchedule,
		DeliverySchedule: cfg.DeliverySchedule,
		PollTimeout:      cfg.PollTimeout,
		DeliveryTimeout:  cfg.DeliveryTimeout,
		Enabled:          cfg.SchedulerEnabled,
	}, pollService, deliveryService, logger)

	// Initialize handlers
	webhookHandler := handler.NewWebhookHandler(commandService, router, handler.WebhookConfig{
		MetaVerifyToken:    cfg.Meta.VerifyToken,
		MetaAppSecret:      cfg.Meta.AppSecret,
		SkipSignatureCheck: cfg.IsDevelopment(),
		TelegramSecret:     cfg.Telegram.WebhookSecret,
	}, logger)
	watchlistHandler := handler.NewWatchlistHandler(commandService)
	opsHandler := handler.NewOpsHandler(sched, pollService)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	// CORS - allow frontend origin from env or default
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Health check
	// @Summary Health check
	// @Description Check if the API is running
	// @Tags health
	// @Produce json
	// @Success 200 {object} map[string]string
	// @Router /health [get]
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Channel webhooks
	r.Get("/webhooks/meta", webhookHandler.VerifyMeta)
	r.Post("/webhooks/meta", webhookHandler.ReceiveMeta)
	r.Post("/webhooks/telegram", webhookHandler.ReceiveTelegram)

	// Watchlist API
	r.Post("/api/v1/watchlist", watchlistHandler.AddItem)
	r.Get("/api/v1/watchlist/my/{phone}", watchlistHandler.MyWatchlist)
	r.Get("/api/v1/watchlist/family/{phone}", watchlistHandler.FamilyWatchlist)

	// Operations API
	r.Post("/api/v1/poll/run", opsHandler.RunPoll)
	r.Get("/api/v1/poll/status", opsHandler.PollStatus)
	r.Post("/api/v1/delivery/run", opsHandler.RunDelivery)

	if err := sched.Start(); err != nil {
		logger.Error("Failed to start scheduler", slog.String("error", err.Error()))
	}

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	// Create server
	server := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// Handle graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		// Stop scheduler first so running jobs finish
		ctx := sched.Stop()
		<-ctx.Done()
		logger.Info("Scheduler stopped")

		// Shutdown HTTP server
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("Server shutdown error", slog.String("error", err.Error()))
		}
	}()

	log.Printf("Server starting on port %s", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("Server failed: %v", err)
	}
}
