package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Telegram TelegramConfig
	Backend  BackendConfig
	Redis    RedisConfig
	Ops      OpsConfig
	Sentry   SentryConfig

	Environment string
	SheetURL    string
}

// TelegramConfig holds bot credentials and the operator allow-list
type TelegramConfig struct {
	BotToken string `validate:"required"`
	// AdminIDs is the privileged-operator allow-list. An empty list
	// means every caller is treated as privileged.
	AdminIDs []int64
}

// BackendConfig holds the gift-certificate API connection settings
type BackendConfig struct {
	BaseURL  string `validate:"required,url"`
	APIToken string `validate:"required"`
	Timeout  time.Duration
}

// RedisConfig holds optional Redis session-store configuration.
// Sessions stay in process memory when Addr is empty.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	SessionTTL time.Duration
}

// OpsConfig holds the operational HTTP server configuration
type OpsConfig struct {
	Port string
}

// SentryConfig holds optional crash reporting configuration
type SentryConfig struct {
	DSN string
}

// Load loads configuration from environment variables and validates
// that the bot cannot start without working credentials.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Telegram: TelegramConfig{
			BotToken: getEnv("TG_BOT_TOKEN", ""),
			AdminIDs: parseIDList(getEnv("TG_ADMIN_IDS", "")),
		},
		Backend: BackendConfig{
			BaseURL:  strings.TrimRight(getEnv("OC_BASE_URL", ""), "/"),
			APIToken: getEnv("OC_API_TOKEN", ""),
			Timeout:  time.Duration(getEnvAsInt("OC_TIMEOUT_SECONDS", 40)) * time.Second,
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvAsInt("REDIS_DB", 0),
			SessionTTL: time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		},
		Ops: OpsConfig{
			Port: getEnv("OPS_PORT", "8080"),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
		Environment: getEnv("ENVIRONMENT", "development"),
		SheetURL:    getEnv("SHEET_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every setting the bot cannot run without is present.
func (c *Config) Validate() error {
	v := validator.New()

	if err := v.Struct(c.Telegram); err != nil {
		return fmt.Errorf("telegram config: %w", err)
	}
	if err := v.Struct(c.Backend); err != nil {
		return fmt.Errorf("backend config: %w", err)
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http") {
		return fmt.Errorf("backend config: OC_BASE_URL must be an http(s) URL")
	}

	return nil
}

// parseIDList parses a comma-separated list of numeric caller identities.
// Entries that are not plain digits are skipped.
func parseIDList(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
