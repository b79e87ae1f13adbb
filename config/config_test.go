package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "./data/journal.db", cfg.DBPath)
	assert.Equal(t, "generic", cfg.Broker)
	assert.Equal(t, "USD", cfg.Currency)
	assert.Equal(t, 60*time.Second, cfg.FuzzyTimeWindow)
	assert.Equal(t, 0.01, cfg.FuzzyPriceTolerance)
	assert.Equal(t, "default", cfg.SyncKey)
	assert.True(t, cfg.IsTestnet)
	assert.Equal(t, zerolog.InfoLevel, cfg.LogLevel)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DB_PATH", "/tmp/test-journal.db")
	t.Setenv("BROKER", "TradingView")
	t.Setenv("CURRENCY", "EUR")
	t.Setenv("FUZZY_TIME_WINDOW_SECONDS", "120")
	t.Setenv("FUZZY_PRICE_TOLERANCE", "0.05")
	t.Setenv("SYNC_URL", "https://kv.example.test")
	t.Setenv("SYNC_KEY", "my-journal")
	t.Setenv("IS_TESTNET", "false")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test-journal.db", cfg.DBPath)
	assert.Equal(t, "tradingview", cfg.Broker, "broker tag is lowercased")
	assert.Equal(t, "EUR", cfg.Currency)
	assert.Equal(t, 2*time.Minute, cfg.FuzzyTimeWindow)
	assert.Equal(t, 0.05, cfg.FuzzyPriceTolerance)
	assert.Equal(t, "https://kv.example.test", cfg.SyncURL)
	assert.Equal(t, "my-journal", cfg.SyncKey)
	assert.False(t, cfg.IsTestnet)
	assert.Equal(t, zerolog.DebugLevel, cfg.LogLevel)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	t.Run("non-numeric fuzzy window", func(t *testing.T) {
		t.Setenv("FUZZY_TIME_WINDOW_SECONDS", "soon")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("negative fuzzy window", func(t *testing.T) {
		t.Setenv("FUZZY_TIME_WINDOW_SECONDS", "-5")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("non-numeric price tolerance", func(t *testing.T) {
		t.Setenv("FUZZY_PRICE_TOLERANCE", "about a cent")
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("accumulates multiple errors", func(t *testing.T) {
		t.Setenv("FUZZY_TIME_WINDOW_SECONDS", "x")
		t.Setenv("FUZZY_PRICE_TOLERANCE", "y")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FUZZY_TIME_WINDOW_SECONDS")
		assert.Contains(t, err.Error(), "FUZZY_PRICE_TOLERANCE")
	})

	t.Run("bad bool falls back to default", func(t *testing.T) {
		t.Setenv("IS_TESTNET", "maybe")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		assert.True(t, cfg.IsTestnet)
	})
}
