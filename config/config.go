package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/jonwraymond/restpipe/secret"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "RESTPIPE_"

// Config is the full restpipe configuration.
type Config struct {
	BaseURL   string            `koanf:"baseurl"`
	Headers   map[string]string `koanf:"headers"`
	Timeout   time.Duration     `koanf:"timeout"`
	Auth      AuthConfig        `koanf:"auth"`
	Storage   StorageConfig     `koanf:"storage"`
	Cache     CacheConfig       `koanf:"cache"`
	Retry     RetryConfig       `koanf:"retry"`
	Secrets   SecretsConfig     `koanf:"secrets"`
	Telemetry TelemetryConfig   `koanf:"telemetry"`
}

// AuthConfig holds the auth endpoints and refresh behavior.
type AuthConfig struct {
	Login       string `koanf:"login"`
	Refresh     string `koanf:"refresh"`
	Register    string `koanf:"register"`
	Logout      string `koanf:"logout"`
	AutoRefresh bool   `koanf:"autorefresh"`
	Proactive   bool   `koanf:"proactive"`
	Rotate      bool   `koanf:"rotate"`
}

// StorageConfig selects where the token pair is kept.
type StorageConfig struct {
	// Backend is memory, file or redis. The browser names localstorage
	// and sessionstorage are accepted as file and memory.
	Backend string      `koanf:"backend"`
	Key     string      `koanf:"key"`
	Path    string      `koanf:"path"`
	Redis   RedisConfig `koanf:"redis"`
}

// RedisConfig configures the redis token backend.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	Prefix   string        `koanf:"prefix"`
	TTL      time.Duration `koanf:"ttl"`
}

// CacheConfig configures the GET response cache.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

// RetryConfig configures retries of failed dispatches.
type RetryConfig struct {
	Enabled bool          `koanf:"enabled"`
	Count   int           `koanf:"count"`
	Delay   time.Duration `koanf:"delay"`
}

// SecretsConfig configures secret resolution. Providers maps a provider
// name to its settings; env is always available.
type SecretsConfig struct {
	Strict    bool                      `koanf:"strict"`
	Providers map[string]map[string]any `koanf:"providers"`
}

// TelemetryConfig configures tracing, metrics and logging.
type TelemetryConfig struct {
	ServiceName string        `koanf:"servicename"`
	Tracing     TracingConfig `koanf:"tracing"`
	Metrics     MetricsConfig `koanf:"metrics"`
	Log         LogConfig     `koanf:"log"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	Enabled   bool    `koanf:"enabled"`
	Exporter  string  `koanf:"exporter"`
	SamplePct float64 `koanf:"samplepct"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Exporter string `koanf:"exporter"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Enabled bool   `koanf:"enabled"`
	Level   string `koanf:"level"`
}

// Load reads configuration with priority:
// 1. Environment variables with EnvPrefix (highest priority)
// 2. The YAML file at path, when path is not empty
// 3. Default values (lowest priority)
//
// The result is validated and its secrets resolved.
func Load(ctx context.Context, path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", path, err)
		}
	}

	if err := k.Load(envprovider.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.resolveSecrets(ctx); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey converts RESTPIPE_CACHE_TTL to cache.ttl.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
}

func defaults() map[string]any {
	return map[string]any{
		"timeout": "10s",

		"auth.autorefresh": true,
		"auth.proactive":   false,
		"auth.rotate":      false,

		"storage.backend":      "memory",
		"storage.key":          "restpipe.tokens",
		"storage.redis.prefix": "restpipe:",

		"cache.enabled": true,
		"cache.ttl":     "5m",

		"retry.enabled": true,
		"retry.count":   3,
		"retry.delay":   "1s",

		"secrets.strict": true,

		"telemetry.servicename":       "restpipe",
		"telemetry.tracing.enabled":   false,
		"telemetry.tracing.exporter":  "none",
		"telemetry.tracing.samplepct": 1.0,
		"telemetry.metrics.enabled":   false,
		"telemetry.metrics.exporter":  "none",
		"telemetry.log.enabled":       true,
		"telemetry.log.level":         "warn",
	}
}

func (c *Config) resolveSecrets(ctx context.Context) error {
	providers := map[string]map[string]any{"env": nil}
	for name, settings := range c.Secrets.Providers {
		providers[name] = settings
	}

	resolver, err := secret.NewDefaultRegistry().Resolver(c.Secrets.Strict, providers)
	if err != nil {
		return fmt.Errorf("config: secrets: %w", err)
	}
	defer func() { _ = resolver.Close() }()

	headers, err := resolver.ResolveMap(ctx, c.Headers)
	if err != nil {
		return fmt.Errorf("config: headers: %w", err)
	}
	c.Headers = headers

	if c.Storage.Redis.Password != "" {
		password, err := resolver.ResolveValue(ctx, c.Storage.Redis.Password)
		if err != nil {
			return fmt.Errorf("config: storage.redis.password: %w", err)
		}
		c.Storage.Redis.Password = password
	}
	return nil
}
