package config

import (
	"context"
	"fmt"
	"io"

	"github.com/jonwraymond/restpipe/client"
	"github.com/jonwraymond/restpipe/observe"
	"github.com/jonwraymond/restpipe/token"
)

// ObserveConfig returns the telemetry settings for observe.NewObserver.
func (c *Config) ObserveConfig() observe.Config {
	return observe.Config{
		ServiceName: c.Telemetry.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   c.Telemetry.Tracing.Enabled,
			Exporter:  c.Telemetry.Tracing.Exporter,
			SamplePct: c.Telemetry.Tracing.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.Telemetry.Metrics.Enabled,
			Exporter: c.Telemetry.Metrics.Exporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.Telemetry.Log.Enabled,
			Level:   c.Telemetry.Log.Level,
		},
	}
}

// TokenStorageConfig returns the token storage settings.
func (c *Config) TokenStorageConfig() token.StorageConfig {
	return token.StorageConfig{
		Backend: c.Storage.Backend,
		Key:     c.Storage.Key,
		Path:    c.Storage.Path,
		Redis: token.RedisConfig{
			Addr:     c.Storage.Redis.Addr,
			Password: c.Storage.Redis.Password,
			DB:       c.Storage.Redis.DB,
			Prefix:   c.Storage.Redis.Prefix,
			TTL:      c.Storage.Redis.TTL,
		},
	}
}

// Built is a client configuration together with the resources behind it.
type Built struct {
	Client   client.Config
	Observer observe.Observer

	closers []func(context.Context) error
}

// Close releases the observer and the token storage backend.
func (b *Built) Close(ctx context.Context) error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	b.closers = nil
	return first
}

// Build opens the token storage and the observer and assembles a
// client.Config from c. Callers must Close the result.
func (c *Config) Build(ctx context.Context) (*Built, error) {
	b := &Built{}

	storage, err := token.OpenStorage(c.TokenStorageConfig())
	if err != nil {
		return nil, fmt.Errorf("config: token storage: %w", err)
	}
	if closer, ok := storage.(io.Closer); ok {
		b.closers = append(b.closers, func(context.Context) error { return closer.Close() })
	}

	store, err := token.NewStore(storage, token.WithKey(c.Storage.Key))
	if err != nil {
		_ = b.Close(ctx)
		return nil, fmt.Errorf("config: token store: %w", err)
	}

	obs, err := observe.NewObserver(ctx, c.ObserveConfig())
	if err != nil {
		_ = b.Close(ctx)
		return nil, fmt.Errorf("config: telemetry: %w", err)
	}
	b.closers = append(b.closers, obs.Shutdown)
	b.Observer = obs

	b.Client = client.Config{
		BaseURL: c.BaseURL,
		AuthEndpoints: client.AuthEndpoints{
			Login:    c.Auth.Login,
			Refresh:  c.Auth.Refresh,
			Register: c.Auth.Register,
			Logout:   c.Auth.Logout,
		},
		TokenStore:         store,
		DefaultHeaders:     c.Headers,
		DefaultTimeout:     c.Timeout,
		EnableCache:        c.Cache.Enabled,
		CacheDuration:      c.Cache.TTL,
		EnableRetry:        c.Retry.Enabled,
		RetryCount:         c.Retry.Count,
		RetryDelay:         c.Retry.Delay,
		AutoRefreshToken:   c.Auth.AutoRefresh,
		ProactiveRefresh:   c.Auth.Proactive,
		RotateRefreshToken: c.Auth.Rotate,
		Observer:           obs,
	}
	return b, nil
}
