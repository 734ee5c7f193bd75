// Package common provides shared utilities for Folio
package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Folio
type Config struct {
	Environment string          `toml:"environment"`
	Broker      string          `toml:"broker"` // broker identifier used to select the classifier ("ibi", "generic")
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Prices      PricesConfig    `toml:"prices"`
	Validator   ValidatorConfig `toml:"validator"`
	Builder     BuilderConfig   `toml:"builder"`
	Logging     LoggingConfig   `toml:"logging"`
}

// StorageConfig holds path configuration for the file-backed stores.
type StorageConfig struct {
	Cache AreaConfig `toml:"cache"` // price cache + manual overrides (file-based JSON)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Yahoo YahooConfig `toml:"yahoo"`
}

// YahooConfig holds Yahoo Finance API configuration
type YahooConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// PricesConfig holds the price fallback engine tuning knobs.
// All durations are duration strings ("10m", "24h").
type PricesConfig struct {
	CacheTTL       string `toml:"cache_ttl"`       // TTL for the in-memory price cache
	Staleness      string `toml:"staleness"`       // age beyond which a price is flagged stale
	MaxRetries     int    `toml:"max_retries"`     // live fetch attempts
	InitialDelay   string `toml:"initial_delay"`   // first retry delay
	MaxDelay       string `toml:"max_delay"`       // retry delay cap
	RateLimitPause string `toml:"rate_limit_pause"` // extra pause after a rate-limit response
	BatchDelay     string `toml:"batch_delay"`     // fixed delay between batch fetches
}

// GetCacheTTL parses and returns the in-memory cache TTL.
func (c *PricesConfig) GetCacheTTL() time.Duration {
	return parseDurationOr(c.CacheTTL, 10*time.Minute)
}

// GetStaleness parses and returns the staleness threshold.
func (c *PricesConfig) GetStaleness() time.Duration {
	return parseDurationOr(c.Staleness, 24*time.Hour)
}

// GetInitialDelay parses and returns the initial retry delay.
func (c *PricesConfig) GetInitialDelay() time.Duration {
	return parseDurationOr(c.InitialDelay, time.Second)
}

// GetMaxDelay parses and returns the retry delay cap.
func (c *PricesConfig) GetMaxDelay() time.Duration {
	return parseDurationOr(c.MaxDelay, 10*time.Second)
}

// GetRateLimitPause parses and returns the rate-limit pause.
func (c *PricesConfig) GetRateLimitPause() time.Duration {
	return parseDurationOr(c.RateLimitPause, 5*time.Second)
}

// GetBatchDelay parses and returns the inter-request batch delay.
func (c *PricesConfig) GetBatchDelay() time.Duration {
	return parseDurationOr(c.BatchDelay, 500*time.Millisecond)
}

// ValidatorConfig holds position validation tolerances.
type ValidatorConfig struct {
	QuantityTolerance float64 `toml:"quantity_tolerance"` // max share diff before a quantity mismatch (shares)
	CostToleranceAbs  float64 `toml:"cost_tolerance_abs"` // absolute cost-basis tolerance (currency units)
	CostTolerancePct  float64 `toml:"cost_tolerance_pct"` // percentage cost-basis tolerance
}

// BuilderConfig holds portfolio builder behavior.
type BuilderConfig struct {
	FailFast bool `toml:"fail_fast"` // abort on first error instead of accumulating
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Broker:      "ibi",
		Storage: StorageConfig{
			Cache: AreaConfig{Path: "data/cache"},
		},
		Clients: ClientsConfig{
			Yahoo: YahooConfig{
				BaseURL:   "https://query1.finance.yahoo.com",
				RateLimit: 2,
				Timeout:   "10s",
			},
		},
		Prices: PricesConfig{
			CacheTTL:       "10m",
			Staleness:      "24h",
			MaxRetries:     3,
			InitialDelay:   "1s",
			MaxDelay:       "10s",
			RateLimitPause: "5s",
			BatchDelay:     "500ms",
		},
		Validator: ValidatorConfig{
			QuantityTolerance: 0.01,
			CostToleranceAbs:  1.0,
			CostTolerancePct:  0.1,
		},
		Builder: BuilderConfig{
			FailFast: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Apply environment overrides
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("FOLIO_ENV"); env != "" {
		config.Environment = env
	}

	if broker := os.Getenv("FOLIO_BROKER"); broker != "" {
		config.Broker = strings.ToLower(broker)
	}

	if level := os.Getenv("FOLIO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("FOLIO_DATA_PATH"); path != "" {
		config.Storage.Cache.Path = filepath.Join(path, "cache")
	}

	if ttl := os.Getenv("FOLIO_PRICE_CACHE_TTL"); ttl != "" {
		config.Prices.CacheTTL = ttl
	}

	if retries := os.Getenv("FOLIO_PRICE_MAX_RETRIES"); retries != "" {
		if n, err := strconv.Atoi(retries); err == nil && n > 0 {
			config.Prices.MaxRetries = n
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
