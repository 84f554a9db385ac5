package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/jonwraymond/restpipe/secret"
	"github.com/jonwraymond/restpipe/token"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "restpipe.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RESTPIPE_BASEURL", "https://api.test")

	cfg, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.BaseURL != "https://api.test" {
		t.Errorf("BaseURL = %q, want https://api.test", cfg.BaseURL)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache = %+v, want enabled 5m", cfg.Cache)
	}
	if !cfg.Retry.Enabled || cfg.Retry.Count != 3 || cfg.Retry.Delay != time.Second {
		t.Errorf("Retry = %+v, want enabled 3 x 1s", cfg.Retry)
	}
	if !cfg.Auth.AutoRefresh || cfg.Auth.Rotate {
		t.Errorf("Auth = %+v, want autorefresh without rotation", cfg.Auth)
	}
	if cfg.Storage.Backend != token.BackendMemory || cfg.Storage.Key != token.DefaultStorageKey {
		t.Errorf("Storage = %+v, want memory under %s", cfg.Storage, token.DefaultStorageKey)
	}
}

func TestLoad_Priority(t *testing.T) {
	path := writeYAML(t, `
baseurl: https://yaml.test
timeout: 3s
cache:
  ttl: 1m
retry:
  count: 5
auth:
  refresh: /auth/refresh
headers:
  X-Client: yaml
`)
	t.Setenv("RESTPIPE_BASEURL", "https://env.test")
	t.Setenv("RESTPIPE_RETRY_COUNT", "7")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"env over yaml", cfg.BaseURL, "https://env.test"},
		{"env over yaml int", cfg.Retry.Count, 7},
		{"yaml over default", cfg.Timeout, 3 * time.Second},
		{"yaml nested", cfg.Cache.TTL, time.Minute},
		{"default kept", cfg.Retry.Delay, time.Second},
		{"yaml only", cfg.Auth.Refresh, "/auth/refresh"},
		{"header", cfg.Headers["X-Client"], "yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("RESTPIPE_BASEURL", "https://api.test")
	if _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() error = nil, want missing file error")
	}
}

func TestLoad_ResolvesSecrets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "redis"), []byte("s3cret\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	path := writeYAML(t, `
baseurl: https://api.test
headers:
  X-Api-Key: secretref:env:RP_TEST_API_KEY
  X-Tenant: "${RP_TEST_TENANT}"
storage:
  backend: redis
  redis:
    addr: localhost:6379
    password: secretref:file:redis
secrets:
  providers:
    file:
      dir: `+dir+`
`)
	t.Setenv("RP_TEST_API_KEY", "key-123")
	t.Setenv("RP_TEST_TENANT", "acme")

	cfg, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.Headers["X-Api-Key"]; got != "key-123" {
		t.Errorf("X-Api-Key = %q, want key-123", got)
	}
	if got := cfg.Headers["X-Tenant"]; got != "acme" {
		t.Errorf("X-Tenant = %q, want acme", got)
	}
	if got := cfg.Storage.Redis.Password; got != "s3cret" {
		t.Errorf("redis password = %q, want s3cret", got)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeYAML(t, `
baseurl: https://api.test
headers:
  X-Api-Key: "${RP_TEST_UNSET_VAR}"
`)
	_, err := Load(context.Background(), path)
	if !errors.Is(err, secret.ErrMissingEnv) {
		t.Errorf("Load() error = %v, want ErrMissingEnv", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			BaseURL:   "https://api.test",
			Telemetry: TelemetryConfig{ServiceName: "restpipe", Log: LogConfig{Level: "info"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing base url", func(c *Config) { c.BaseURL = "" }, ErrMissingBaseURL},
		{"relative base url", func(c *Config) { c.BaseURL = "/api" }, ErrInvalidBaseURL},
		{"ftp base url", func(c *Config) { c.BaseURL = "ftp://api.test" }, ErrInvalidBaseURL},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "cookie" }, ErrInvalidStorage},
		{"file without path", func(c *Config) { c.Storage.Backend = "file" }, ErrInvalidStorage},
		{"redis without addr", func(c *Config) { c.Storage.Backend = "redis" }, ErrInvalidStorage},
		{"negative retry", func(c *Config) { c.Retry.Count = -1 }, ErrInvalidValue},
		{"negative ttl", func(c *Config) { c.Cache.TTL = -time.Second }, ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_InvalidTelemetry(t *testing.T) {
	cfg := Config{
		BaseURL: "https://api.test",
		Telemetry: TelemetryConfig{
			ServiceName: "restpipe",
			Tracing:     TracingConfig{Enabled: true, Exporter: "carrier-pigeon"},
		},
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() error = nil, want telemetry error")
	}
}

func TestValidate_StorageAliases(t *testing.T) {
	tests := []struct {
		backend string
		path    string
		want    string
	}{
		{"", "", token.BackendMemory},
		{"sessionStorage", "", token.BackendMemory},
		{"localStorage", "/tmp/tokens.json", token.BackendFile},
		{" Redis ", "", token.BackendRedis},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := Config{
				BaseURL: "https://api.test",
				Storage: StorageConfig{
					Backend: tt.backend,
					Path:    tt.path,
					Redis:   RedisConfig{Addr: "localhost:6379"},
				},
				Telemetry: TelemetryConfig{ServiceName: "restpipe"},
			}
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if cfg.Storage.Backend != tt.want {
				t.Errorf("Backend = %q, want %q", cfg.Storage.Backend, tt.want)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	mr := miniredis.RunT(t)
	t.Setenv("RESTPIPE_BASEURL", "https://api.test")
	t.Setenv("RESTPIPE_STORAGE_BACKEND", "redis")
	t.Setenv("RESTPIPE_STORAGE_REDIS_ADDR", mr.Addr())
	t.Setenv("RESTPIPE_STORAGE_KEY", "cli.tokens")
	t.Setenv("RESTPIPE_AUTH_REFRESH", "/auth/refresh")
	t.Setenv("RESTPIPE_AUTH_ROTATE", "true")
	t.Setenv("RESTPIPE_TELEMETRY_LOG_ENABLED", "false")

	ctx := context.Background()
	cfg, err := Load(ctx, "")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	built, err := cfg.Build(ctx)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer func() {
		if err := built.Close(ctx); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	}()

	cc := built.Client
	if cc.BaseURL != "https://api.test" || cc.AuthEndpoints.Refresh != "/auth/refresh" {
		t.Errorf("client config = %+v", cc)
	}
	if !cc.RotateRefreshToken || !cc.AutoRefreshToken {
		t.Errorf("refresh flags = auto %v rotate %v, want both", cc.AutoRefreshToken, cc.RotateRefreshToken)
	}
	if cc.Observer == nil {
		t.Error("Observer = nil")
	}

	if err := cc.TokenStore.Save(ctx, token.Pair{Access: "a", Refresh: "r"}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !mr.Exists("restpipe:cli.tokens") {
		t.Errorf("redis keys = %v, want restpipe:cli.tokens", mr.Keys())
	}
}
