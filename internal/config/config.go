package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MetaConfig holds credentials for the Meta (WhatsApp Cloud API) channel.
type MetaConfig struct {
	VerifyToken   string // Webhook subscription verify token
	AppSecret     string // Used to validate X-Hub-Signature-256
	AccessToken   string // Bearer token for the Graph API
	PhoneNumberID string // Sending phone number id
	GraphVersion  string // e.g. "v21.0"
}

// TelegramConfig holds credentials for the Telegram channel.
type TelegramConfig struct {
	BotToken      string
	WebhookSecret string // Expected X-Telegram-Bot-Api-Secret-Token value
}

type Config struct {
	// Server
	Port string
	Env  string // "development", "production"

	// Database
	DatabaseURL    string
	MigrationsPath string

	// Dialog state store. Empty RedisURL selects the in-process store.
	RedisURL  string
	DialogTTL time.Duration

	// CORS
	AllowedOrigins []string

	// Channels
	Meta     MetaConfig
	Telegram TelegramConfig

	// Price fetching
	FetchTimeout time.Duration

	// Scheduler
	SchedulerEnabled bool
	PollSchedule     string // Cron expression (e.g., "0 */3 * * *" every 3 hours)
	DeliverySchedule string // Cron expression (e.g., "*/5 * * * *" every 5 minutes)
	PollTimeout      time.Duration
	DeliveryTimeout  time.Duration

	// Alerting defaults
	DefaultCheckIntervalHours int
	DefaultMinDropPercent     float64
	AlertCooldownHours        int
}

func Load() *Config {
	// Local development convenience; missing .env is fine.
	_ = godotenv.Load()

	env := getEnv("ENV", "development")

	return &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  env,

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", "postgres://localhost:5432/pricewatch?sslmode=disable"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),

		// Dialog state store
		RedisURL:  os.Getenv("REDIS_URL"),
		DialogTTL: getDurationEnv("DIALOG_TTL", 30*time.Minute),

		// CORS
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),

		// Channels
		Meta: MetaConfig{
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			AppSecret:     os.Getenv("META_APP_SECRET"),
			AccessToken:   os.Getenv("META_ACCESS_TOKEN"),
			PhoneNumberID: os.Getenv("META_PHONE_NUMBER_ID"),
			GraphVersion:  getEnv("META_GRAPH_VERSION", "v21.0"),
		},
		Telegram: TelegramConfig{
			BotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
			WebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		},

		// Price fetching
		FetchTimeout: getDurationEnv("FETCH_TIMEOUT", 25*time.Second),

		// Scheduler
		SchedulerEnabled: getBoolEnv("SCHEDULER_ENABLED", true),
		PollSchedule:     getEnv("POLL_SCHEDULE", "0 */3 * * *"),     // Default: every 3 hours
		DeliverySchedule: getEnv("DELIVERY_SCHEDULE", "*/5 * * * *"), // Default: every 5 minutes
		PollTimeout:      getDurationEnv("POLL_TIMEOUT", 30*time.Minute),
		DeliveryTimeout:  getDurationEnv("DELIVERY_TIMEOUT", 5*time.Minute),

		// Alerting defaults
		DefaultCheckIntervalHours: getIntEnv("DEFAULT_CHECK_INTERVAL_HOURS", 3),
		DefaultMinDropPercent:     getFloatEnv("DEFAULT_MIN_DROP_PERCENT", 5.0),
		AlertCooldownHours:        getIntEnv("ALERT_COOLDOWN_HOURS", 24),
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
