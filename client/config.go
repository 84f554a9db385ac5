package client

import (
	"net/http"
	"time"

	"github.com/jonwraymond/restpipe/cache"
	"github.com/jonwraymond/restpipe/observe"
	"github.com/jonwraymond/restpipe/resilience"
	"github.com/jonwraymond/restpipe/token"
)

// Defaults applied when a Config leaves a duration unset.
const (
	DefaultCacheDuration = cache.DefaultTTL
	DefaultRetryCount    = 3
	DefaultRetryDelay    = resilience.DefaultInitialDelay
	DefaultTimeout       = resilience.DefaultTimeout
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AuthEndpoints are paths relative to BaseURL (or absolute URLs).
type AuthEndpoints struct {
	Login    string
	Refresh  string
	Register string
	Logout   string
}

// Config configures a Client. It is copied by New and not read again.
//
// The zero value disables caching, retries and automatic refresh; use
// DefaultConfig for the documented defaults.
type Config struct {
	// BaseURL is prefixed to every request path. Required.
	BaseURL string

	AuthEndpoints AuthEndpoints

	// TokenStore holds the access/refresh pair. Default: in-memory store.
	TokenStore *token.Store

	// DefaultHeaders are sent with every request.
	DefaultHeaders map[string]string

	// DefaultTimeout bounds each dispatch. Default: 10s
	DefaultTimeout time.Duration

	// EnableCache caches GET responses.
	EnableCache bool

	// CacheDuration is the cache TTL. Default: 5m
	CacheDuration time.Duration

	// EnableRetry retries failed dispatches.
	EnableRetry bool

	// RetryCount is the number of retries after the first attempt.
	// Default: 3. Disable retries with EnableRetry or WithRetryCount(0).
	RetryCount int

	// RetryDelay is the wait before the first retry; later waits double.
	// Default: 1s
	RetryDelay time.Duration

	// AutoRefreshToken refreshes the access token and replays the request
	// once on a 401. Requires AuthEndpoints.Refresh.
	AutoRefreshToken bool

	// ProactiveRefresh refreshes an expired access token before dispatch
	// instead of waiting for the 401.
	ProactiveRefresh bool

	// RotateRefreshToken stores a refresh token returned by the refresh
	// endpoint. When false the original refresh token is kept.
	RotateRefreshToken bool

	// OnAuthError is called after a refresh fails and the tokens have
	// been cleared.
	OnAuthError func()

	// HTTPClient sends requests. Default: http.DefaultClient
	HTTPClient Doer

	// Cache stores GET responses. Default: cache.MemoryCache
	Cache cache.Cache

	// Observer provides tracing, metrics and logging. Default: no-op.
	Observer observe.Observer

	// Clock is the time source of the default cache. Default: time.Now
	Clock func() time.Time
}

// DefaultConfig returns a Config for baseURL with caching, retries and
// automatic refresh enabled and every default applied.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:          baseURL,
		DefaultTimeout:   DefaultTimeout,
		EnableCache:      true,
		CacheDuration:    DefaultCacheDuration,
		EnableRetry:      true,
		RetryCount:       DefaultRetryCount,
		RetryDelay:       DefaultRetryDelay,
		AutoRefreshToken: true,
	}
}

func (c *Config) applyDefaults() error {
	if c.DefaultTimeout <= 0 {
		c.DefaultTimeout = DefaultTimeout
	}
	if c.CacheDuration <= 0 {
		c.CacheDuration = DefaultCacheDuration
	}
	if c.RetryCount <= 0 {
		c.RetryCount = DefaultRetryCount
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Cache == nil {
		c.Cache = cache.NewMemoryCache(cache.WithClock(c.Clock))
	}
	if c.Observer == nil {
		c.Observer = observe.NewNoopObserver()
	}
	if c.TokenStore == nil {
		store, err := token.NewStore(token.NewMemoryStorage())
		if err != nil {
			return err
		}
		c.TokenStore = store
	}
	return nil
}
