package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
  request_timeout_seconds: 30
logging:
  development: false
fetch:
  timeout_seconds: 45
  max_redirects: 3
  requests_per_second: 0.5
  burst: 1
headless:
  enabled: true
  max_parallel: 2
  nav_timeout_seconds: 30
  body_threshold: 1024
enrich:
  enabled: true
  api_key: secret
  model: gpt-4o-mini
cache:
  ttl_hours: 12
  capacity: 50
  cleanup_minutes: 30
throttle:
  window_seconds: 5
  max_requests: 2
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Logging.Development {
		t.Fatal("expected logging override to apply")
	}
	if cfg.Enrich.Model != "gpt-4o-mini" || cfg.Enrich.APIKey != "secret" {
		t.Fatalf("expected enrich overrides to apply: %+v", cfg.Enrich)
	}
	if got := cfg.FetchTimeout(); got != 45*time.Second {
		t.Fatalf("expected fetch timeout 45s, got %v", got)
	}
	if got := cfg.CacheTTL(); got != 12*time.Hour {
		t.Fatalf("expected cache ttl 12h, got %v", got)
	}
	if got := cfg.ThrottleWindow(); got != 5*time.Second {
		t.Fatalf("expected throttle window 5s, got %v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Cache.TTLHours != 24 || cfg.Cache.Capacity != 100 {
		t.Fatalf("unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.Throttle.WindowSeconds != 10 || cfg.Throttle.MaxRequests != 3 {
		t.Fatalf("unexpected throttle defaults: %+v", cfg.Throttle)
	}
	if cfg.Enrich.Enabled {
		t.Fatal("enrichment must be off by default: it needs an api key")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server:   ServerConfig{Port: 8080},
		Fetch:    FetchConfig{TimeoutSeconds: 10},
		Cache:    CacheConfig{TTLHours: 24, Capacity: 100},
		Throttle: ThrottleConfig{WindowSeconds: 10, MaxRequests: 3},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "invalid timeout",
			cfg: func() Config {
				c := base
				c.Fetch.TimeoutSeconds = 0
				return c
			}(),
			want: "fetch.timeout_seconds",
		},
		{
			name: "headless missing max parallel",
			cfg: func() Config {
				c := base
				c.Headless.Enabled = true
				c.Headless.MaxParallel = 0
				return c
			}(),
			want: "headless.max_parallel",
		},
		{
			name: "enrich missing api key",
			cfg: func() Config {
				c := base
				c.Enrich.Enabled = true
				return c
			}(),
			want: "enrich.api_key",
		},
		{
			name: "invalid cache capacity",
			cfg: func() Config {
				c := base
				c.Cache.Capacity = 0
				return c
			}(),
			want: "cache.capacity",
		},
		{
			name: "invalid throttle limit",
			cfg: func() Config {
				c := base
				c.Throttle.MaxRequests = 0
				return c
			}(),
			want: "throttle.max_requests",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
