package config

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all FinSight configuration.
type Config struct {
	Listen     string           `yaml:"listen"`
	DBPath     string           `yaml:"db_path"`
	MarketData MarketDataConfig `yaml:"market_data"`
	Cache      CacheConfig      `yaml:"cache"`
	Retry      RetryConfig      `yaml:"retry"`
	Breaker    BreakerConfig    `yaml:"breaker"`
	Providers  []ProviderConfig `yaml:"providers"`
	Confidence ConfidenceConfig `yaml:"confidence"`
}

// MarketDataConfig defines the upstream market-data API.
type MarketDataConfig struct {
	URL       string `yaml:"url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// CacheConfig controls the in-memory data caches.
// FinancialsTTL defaults to 24x TTL; financial statements change far less
// often than prices.
type CacheConfig struct {
	MaxSize       int           `yaml:"max_size"`
	TTL           time.Duration `yaml:"ttl"`
	FinancialsTTL time.Duration `yaml:"financials_ttl"`
}

// RetryConfig controls exponential-backoff retries around data fetches.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	MinWait     time.Duration `yaml:"min_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
}

// BreakerConfig controls circuit breakers around external dependencies.
type BreakerConfig struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	SuccessThreshold int           `yaml:"success_threshold"`
	Timeout          time.Duration `yaml:"timeout"`
}

// ProviderConfig defines one LLM provider candidate. Candidates are tried in
// ascending priority order. APIKeyEnv names the environment variable holding
// the credential; it is required when RequiresKey is true.
type ProviderConfig struct {
	Name        string  `yaml:"name"`
	Model       string  `yaml:"model"`
	URL         string  `yaml:"url"`
	Priority    int     `yaml:"priority"`
	RequiresKey bool    `yaml:"requires_key"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	CostPer1K   float64 `yaml:"cost_per_1k_tokens"`
}

// ConfidenceConfig holds the factor weights and tunables for the scorer.
type ConfidenceConfig struct {
	Weights           WeightsConfig `yaml:"weights"`
	DefaultHistorical float64       `yaml:"default_historical_accuracy"`
}

// WeightsConfig holds the five factor weights. They must sum to 1.0.
type WeightsConfig struct {
	DataCompleteness   float64 `yaml:"data_completeness"`
	DataFreshness      float64 `yaml:"data_freshness"`
	AgentAgreement     float64 `yaml:"agent_agreement"`
	SignalStrength     float64 `yaml:"signal_strength"`
	HistoricalAccuracy float64 `yaml:"historical_accuracy"`
}

// Sum returns the total of all five weights.
func (w WeightsConfig) Sum() float64 {
	return w.DataCompleteness + w.DataFreshness + w.AgentAgreement +
		w.SignalStrength + w.HistoricalAccuracy
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Listen: ":7860",
		DBPath: "finsight.db",
		MarketData: MarketDataConfig{
			URL: "https://query1.finance.yahoo.com",
		},
		Cache: CacheConfig{
			MaxSize: 100,
			TTL:     time.Hour,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			MinWait:     2 * time.Second,
			MaxWait:     10 * time.Second,
		},
		Breaker: BreakerConfig{
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Timeout:          time.Minute,
		},
		Confidence: ConfidenceConfig{
			Weights: WeightsConfig{
				DataCompleteness:   0.25,
				DataFreshness:      0.15,
				AgentAgreement:     0.30,
				SignalStrength:     0.20,
				HistoricalAccuracy: 0.10,
			},
			DefaultHistorical: 0.7,
		},
	}
}

// Load reads a YAML config file, expands environment variables, and
// validates the result. Validation failures are load errors; components
// never re-validate at call time.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Cache.FinancialsTTL == 0 {
		cfg.Cache.FinancialsTTL = 24 * cfg.Cache.TTL
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Cache.MaxSize <= 0 {
		return fmt.Errorf("cache max_size must be positive, got %d", c.Cache.MaxSize)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Retry.MaxAttempts <= 0 {
		return fmt.Errorf("retry max_attempts must be positive, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.MinWait < 0 || c.Retry.MaxWait < c.Retry.MinWait {
		return fmt.Errorf("retry waits invalid: min %s max %s", c.Retry.MinWait, c.Retry.MaxWait)
	}
	if c.Breaker.FailureThreshold <= 0 {
		return fmt.Errorf("breaker failure_threshold must be positive, got %d", c.Breaker.FailureThreshold)
	}
	if c.Breaker.SuccessThreshold <= 0 {
		return fmt.Errorf("breaker success_threshold must be positive, got %d", c.Breaker.SuccessThreshold)
	}
	if c.Breaker.Timeout < 0 {
		return fmt.Errorf("breaker timeout must not be negative, got %s", c.Breaker.Timeout)
	}
	if sum := c.Confidence.Weights.Sum(); math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("confidence weights must sum to 1.0, got %.4f", sum)
	}
	if c.Confidence.DefaultHistorical < 0 || c.Confidence.DefaultHistorical > 1 {
		return fmt.Errorf("default_historical_accuracy must be in [0,1], got %.2f", c.Confidence.DefaultHistorical)
	}
	for i, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider %d: name is required", i)
		}
		if p.Model == "" {
			return fmt.Errorf("provider %q: model is required", p.Name)
		}
		if p.RequiresKey && p.APIKeyEnv == "" {
			return fmt.Errorf("provider %q: api_key_env is required when requires_key is set", p.Name)
		}
		if p.CostPer1K < 0 {
			return fmt.Errorf("provider %q: cost_per_1k_tokens must not be negative", p.Name)
		}
	}
	return nil
}
