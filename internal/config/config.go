// Package config reads the server's configuration from the environment
// once at startup. The returned Config is immutable; nothing reads env
// vars after Load.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sentra-sec/sentinel/internal/observer"
	"github.com/sentra-sec/sentinel/internal/pipeline"
)

// Config holds everything the server binary needs to wire itself up.
type Config struct {
	HTTPPort string
	LogLevel string

	// Gate timeouts
	DetectorTimeout time.Duration
	CheckerTimeout  time.Duration

	// Decision thresholds
	BlockThreshold    float32
	EscalateThreshold float32
	CooccurrenceBonus float32
	MaxInputBytes     int
	FailClosed        bool

	// BlockMessage is the only text a blocked caller ever sees. It must
	// not name the gate or pattern that fired.
	BlockMessage string

	// Observer (Gate 3). Enabled when APIKey is set.
	ObserverBaseURL string
	ObserverAPIKey  string
	ObserverModel   string
	ObserverTimeout time.Duration
	Retry           observer.RetryConfig
	Fallback        observer.FallbackPolicy

	// Peripherals
	ClickHouseDSN string
	PostgresDSN   string
	AuthCacheTTL  time.Duration

	// PolicyFile optionally points at a YAML component policy.
	PolicyFile string
}

// Load reads the configuration from the environment. Invalid values for
// enumerated settings are errors; invalid numerics fall back to their
// defaults like the env helpers always have.
func Load() (Config, error) {
	fallback, err := observer.ParseFallbackPolicy(os.Getenv("SENTINEL_FALLBACK_POLICY"))
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	cfg := Config{
		HTTPPort: envOrDefault("SENTINEL_HTTP_PORT", "8080"),
		LogLevel: envOrDefault("SENTINEL_LOG_LEVEL", "info"),

		DetectorTimeout: time.Duration(envOrDefaultInt("SENTINEL_DETECTOR_TIMEOUT_MS", 100)) * time.Millisecond,
		CheckerTimeout:  time.Duration(envOrDefaultInt("SENTINEL_CHECKER_TIMEOUT_MS", 100)) * time.Millisecond,

		BlockThreshold:    envOrDefaultFloat("SENTINEL_BLOCK_THRESHOLD", 0.8),
		EscalateThreshold: envOrDefaultFloat("SENTINEL_ESCALATE_THRESHOLD", 0.4),
		CooccurrenceBonus: envOrDefaultFloat("SENTINEL_COOCCURRENCE_BONUS", 0.15),
		MaxInputBytes:     envOrDefaultInt("SENTINEL_MAX_INPUT_BYTES", 1<<20),
		FailClosed:        envOrDefaultBool("SENTINEL_FAIL_CLOSED", true),

		BlockMessage: envOrDefault("SENTINEL_BLOCK_MESSAGE",
			"This exchange was blocked by a safety policy."),

		ObserverBaseURL: envOrDefault("SENTINEL_OBSERVER_BASE_URL", "https://api.openai.com/v1"),
		ObserverAPIKey:  os.Getenv("SENTINEL_OBSERVER_API_KEY"),
		ObserverModel:   envOrDefault("SENTINEL_OBSERVER_MODEL", "gpt-4o-mini"),
		ObserverTimeout: time.Duration(envOrDefaultInt("SENTINEL_OBSERVER_TIMEOUT_S", 60)) * time.Second,
		Retry: observer.RetryConfig{
			MaxAttempts:  envOrDefaultInt("SENTINEL_OBSERVER_MAX_ATTEMPTS", 3),
			InitialDelay: time.Duration(envOrDefaultInt("SENTINEL_OBSERVER_RETRY_DELAY_MS", 500)) * time.Millisecond,
			MaxDelay:     time.Duration(envOrDefaultInt("SENTINEL_OBSERVER_RETRY_MAX_DELAY_MS", 5000)) * time.Millisecond,
		},
		Fallback: fallback,

		ClickHouseDSN: os.Getenv("CLICKHOUSE_DSN"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		AuthCacheTTL:  time.Duration(envOrDefaultInt("SENTINEL_AUTH_CACHE_TTL_S", 30)) * time.Second,

		PolicyFile: os.Getenv("SENTINEL_POLICY_FILE"),
	}

	if cfg.EscalateThreshold > cfg.BlockThreshold {
		return Config{}, fmt.Errorf("config.Load: escalate threshold %.2f above block threshold %.2f",
			cfg.EscalateThreshold, cfg.BlockThreshold)
	}

	return cfg, nil
}

// ObserverEnabled reports whether Gate 3 should be wired at all.
func (c Config) ObserverEnabled() bool {
	return c.ObserverAPIKey != ""
}

// PipelineConfig converts the loaded settings into the pipeline's shape.
func (c Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		BlockThreshold:    c.BlockThreshold,
		EscalateThreshold: c.EscalateThreshold,
		MaxInputBytes:     c.MaxInputBytes,
		ObserverTimeout:   c.ObserverTimeout,
		Retry:             c.Retry,
		Fallback:          c.Fallback,
		FailClosed:        c.FailClosed,
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func envOrDefaultFloat(key string, defaultVal float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return defaultVal
}

func envOrDefaultBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
