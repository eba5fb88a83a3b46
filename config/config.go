package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"kolekta/database"
	"kolekta/domain/entities"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Savings accrual configuration
	DailySavingsIncrement string // decimal string, e.g. "20.00"

	// Business calendar configuration
	BusinessTimezone string // IANA name, e.g. "Asia/Manila"

	// Collection configuration
	DaysCountMilestone int // consecutive-days threshold for milestone events

	// Scheduler configuration
	AccrualCron string // cron expression for the daily accrual run

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			// In test environment, use a default test config instead of panicking
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Set replaces the global configuration instance. Intended for tests.
func Set(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// NewTestConfig returns a configuration suitable for tests
func NewTestConfig() *Config {
	return &Config{
		DailySavingsIncrement: "20.00",
		BusinessTimezone:      "Asia/Manila",
		DaysCountMilestone:    30,
		AccrualCron:           "0 1 * * *",
		Environment:           "test",
	}
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// ParseDailySavingsIncrement parses and validates the configured daily
// savings increment. A missing, non-numeric or non-positive value is a
// configuration error.
func (c *Config) ParseDailySavingsIncrement() (decimal.Decimal, error) {
	raw := strings.TrimSpace(c.DailySavingsIncrement)
	if raw == "" {
		return decimal.Decimal{}, fmt.Errorf("DAILY_SAVINGS_INCREMENT is not set: %w", entities.ErrInvalidIncrement)
	}
	inc, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("DAILY_SAVINGS_INCREMENT %q is not a valid decimal: %w", raw, entities.ErrInvalidIncrement)
	}
	if !inc.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("DAILY_SAVINGS_INCREMENT must be positive, got %s: %w", inc, entities.ErrInvalidIncrement)
	}
	return inc, nil
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Accrual settings with defaults
		DailySavingsIncrement: getEnvWithDefault("DAILY_SAVINGS_INCREMENT", "20.00"),
		BusinessTimezone:      getEnvWithDefault("BUSINESS_TIMEZONE", "Asia/Manila"),
		AccrualCron:           getEnvWithDefault("ACCRUAL_CRON", "0 1 * * *"),

		// Collection settings
		DaysCountMilestone: 30,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if milestone := os.Getenv("DAYS_COUNT_MILESTONE"); milestone != "" {
		parsed, err := strconv.Atoi(milestone)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("DAYS_COUNT_MILESTONE must be a positive integer, got %q", milestone)
		}
		config.DaysCountMilestone = parsed
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.DatabaseName != "" && strings.TrimSpace(config.DatabaseName) == "" {
			return nil, fmt.Errorf("DATABASE_NAME cannot be empty when provided")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
