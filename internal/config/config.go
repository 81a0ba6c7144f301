// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	Headless HeadlessConfig `mapstructure:"headless"`
	Enrich   EnrichConfig   `mapstructure:"enrich"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Throttle ThrottleConfig `mapstructure:"throttle"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port            int `mapstructure:"port"`
	RequestTimeout  int `mapstructure:"request_timeout_seconds"`
	ShutdownTimeout int `mapstructure:"shutdown_timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// FetchConfig governs the plain HTTP fetch path.
type FetchConfig struct {
	TimeoutSeconds    int     `mapstructure:"timeout_seconds"`
	MaxRedirects      int     `mapstructure:"max_redirects"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// HeadlessConfig configures the browser-rendering retry path.
type HeadlessConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxParallel   int  `mapstructure:"max_parallel"`
	NavTimeoutSec int  `mapstructure:"nav_timeout_seconds"`
	BodyThreshold int  `mapstructure:"body_threshold"`
}

// EnrichConfig configures the language model client.
type EnrichConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	MaxContent  int     `mapstructure:"max_content"`
}

// CacheConfig bounds the extraction result cache.
type CacheConfig struct {
	TTLHours       int `mapstructure:"ttl_hours"`
	Capacity       int `mapstructure:"capacity"`
	CleanupMinutes int `mapstructure:"cleanup_minutes"`
}

// ThrottleConfig bounds global request admission.
type ThrottleConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxRequests   int `mapstructure:"max_requests"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("JOBEXTRACTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("logging.development", true)
	v.SetDefault("fetch.timeout_seconds", 15)
	v.SetDefault("fetch.max_redirects", 5)
	v.SetDefault("fetch.requests_per_second", 1)
	v.SetDefault("fetch.burst", 2)
	v.SetDefault("headless.enabled", false)
	v.SetDefault("headless.max_parallel", 1)
	v.SetDefault("headless.nav_timeout_seconds", 45)
	v.SetDefault("headless.body_threshold", 2048)
	v.SetDefault("enrich.enabled", false)
	v.SetDefault("enrich.model", "gpt-4-turbo")
	v.SetDefault("enrich.temperature", 0.2)
	v.SetDefault("enrich.max_tokens", 4000)
	v.SetDefault("enrich.max_content", 16000)
	v.SetDefault("cache.ttl_hours", 24)
	v.SetDefault("cache.capacity", 100)
	v.SetDefault("cache.cleanup_minutes", 60)
	v.SetDefault("throttle.window_seconds", 10)
	v.SetDefault("throttle.max_requests", 3)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Fetch.TimeoutSeconds <= 0 {
		return fmt.Errorf("fetch.timeout_seconds must be > 0")
	}
	if c.Headless.Enabled && c.Headless.MaxParallel <= 0 {
		return fmt.Errorf("headless.max_parallel must be > 0 when headless is enabled")
	}
	if c.Enrich.Enabled && c.Enrich.APIKey == "" {
		return fmt.Errorf("enrich.api_key must be set when enrichment is enabled")
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be > 0")
	}
	if c.Throttle.MaxRequests <= 0 {
		return fmt.Errorf("throttle.max_requests must be > 0")
	}
	return nil
}

// FetchTimeout converts the fetch timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// CacheTTL converts the cache TTL into a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

// ThrottleWindow converts the throttle window into a duration.
func (c Config) ThrottleWindow() time.Duration {
	return time.Duration(c.Throttle.WindowSeconds) * time.Second
}
