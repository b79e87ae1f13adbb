package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"tradejournal/internal/adapters/logger"
)

// Config holds all application configuration.
type Config struct {
	// Storage
	DBPath string

	// Import
	Broker        string // Broker tag selecting the CSV column mapping
	ContractsFile string // Optional YAML overriding the built-in contract table
	Currency      string // Reporting currency for exports

	// Deduplication fallback windows
	FuzzyTimeWindow     time.Duration
	FuzzyPriceTolerance float64

	// Remote sync (optional; sync commands fail without SyncURL)
	SyncURL    string
	SyncAPIKey string
	SyncKey    string

	// Binance import source (optional; only required by binance_import)
	BinanceAPIKey    string
	BinanceSecretKey string
	IsTestnet        bool

	// Logging
	LogLevel zerolog.Level
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string

	cfg.DBPath = getEnv("DB_PATH", "./data/journal.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	cfg.Broker = strings.ToLower(getEnv("BROKER", "generic"))
	cfg.ContractsFile = getEnv("CONTRACTS_FILE", "")
	cfg.Currency = getEnv("CURRENCY", "USD")

	fuzzySeconds, err := getEnvAsIntRequired("FUZZY_TIME_WINDOW_SECONDS", 60)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FUZZY_TIME_WINDOW_SECONDS: %v", err))
	} else if fuzzySeconds <= 0 {
		errs = append(errs, "FUZZY_TIME_WINDOW_SECONDS must be positive")
	}
	cfg.FuzzyTimeWindow = time.Duration(fuzzySeconds) * time.Second

	cfg.FuzzyPriceTolerance, err = getEnvAsFloatRequired("FUZZY_PRICE_TOLERANCE", 0.01)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FUZZY_PRICE_TOLERANCE: %v", err))
	} else if cfg.FuzzyPriceTolerance <= 0 {
		errs = append(errs, "FUZZY_PRICE_TOLERANCE must be positive")
	}

	cfg.SyncURL = getEnv("SYNC_URL", "")
	cfg.SyncAPIKey = getEnv("SYNC_API_KEY", "")
	cfg.SyncKey = getEnv("SYNC_KEY", "default")

	cfg.BinanceAPIKey = getEnv("BINANCE_API_KEY", "")
	cfg.BinanceSecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true)

	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
