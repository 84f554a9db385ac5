package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jonwraymond/restpipe/token"
)

// storageAliases maps accepted backend names to token backends.
var storageAliases = map[string]string{
	"":                 token.BackendMemory,
	token.BackendMemory: token.BackendMemory,
	"sessionstorage":   token.BackendMemory,
	token.BackendFile:  token.BackendFile,
	"localstorage":     token.BackendFile,
	token.BackendRedis: token.BackendRedis,
}

// Validate checks required fields and ranges, and normalizes the storage
// backend name.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrMissingBaseURL
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidBaseURL, c.BaseURL)
	}

	backend, ok := storageAliases[strings.ToLower(strings.TrimSpace(c.Storage.Backend))]
	if !ok {
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidStorage, c.Storage.Backend)
	}
	c.Storage.Backend = backend
	switch backend {
	case token.BackendFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("%w: storage.path is required for the file backend", ErrInvalidStorage)
		}
	case token.BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("%w: storage.redis.addr is required for the redis backend", ErrInvalidStorage)
		}
	}

	checks := []struct {
		key string
		bad bool
	}{
		{"timeout", c.Timeout < 0},
		{"cache.ttl", c.Cache.TTL < 0},
		{"retry.count", c.Retry.Count < 0},
		{"retry.delay", c.Retry.Delay < 0},
		{"storage.redis.ttl", c.Storage.Redis.TTL < 0},
	}
	for _, chk := range checks {
		if chk.bad {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, chk.key)
		}
	}

	oc := c.ObserveConfig()
	if err := oc.Validate(); err != nil {
		return fmt.Errorf("config: telemetry: %w", err)
	}
	return nil
}
