package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jonwraymond/restpipe/cache"
	"github.com/jonwraymond/restpipe/observe"
	"github.com/jonwraymond/restpipe/refresh"
	"github.com/jonwraymond/restpipe/token"
)

// Client is a REST client with token injection, refresh, retry and caching.
type Client struct {
	config    Config
	keyer     cache.Keyer
	policy    cache.Policy
	mw        *observe.Middleware
	refresher *refresh.Coordinator
}

// New creates a Client from config.
func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if u, err := url.Parse(config.BaseURL); err != nil || !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, config.BaseURL)
	}
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}

	mw, err := observe.MiddlewareFromObserver(config.Observer)
	if err != nil {
		return nil, fmt.Errorf("client: instrumentation: %w", err)
	}

	c := &Client{
		config: config,
		keyer:  cache.NewRequestKeyer(),
		policy: cache.Policy{
			Enabled:    config.EnableCache,
			DefaultTTL: config.CacheDuration,
		},
		mw: mw,
	}

	if config.AuthEndpoints.Refresh != "" {
		endpoint, err := c.buildURL(config.AuthEndpoints.Refresh, nil)
		if err != nil {
			return nil, err
		}
		c.refresher, err = refresh.New(refresh.Config{
			Endpoint:           endpoint,
			Store:              config.TokenStore,
			HTTPClient:         config.HTTPClient,
			Timeout:            config.DefaultTimeout,
			Headers:            config.DefaultHeaders,
			RotateRefreshToken: config.RotateRefreshToken,
			Metrics:            mw.Metrics(),
			Logger:             mw.Logger(),
		})
		if err != nil {
			return nil, fmt.Errorf("client: refresh coordinator: %w", err)
		}
	}

	return c, nil
}

// Get issues a GET request. Responses may be served from the cache.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

// Post issues a POST request with body encoded as JSON unless it is []byte.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// TokenStore returns the store holding the client's credentials.
func (c *Client) TokenStore() *token.Store {
	return c.config.TokenStore
}

// AuthEndpoints returns the configured authentication endpoints.
func (c *Client) AuthEndpoints() AuthEndpoints {
	return c.config.AuthEndpoints
}

// Logger returns the client's logger.
func (c *Client) Logger() observe.Logger {
	return c.mw.Logger()
}

// InvalidateCache drops the cached GET response for path and params.
func (c *Client) InvalidateCache(ctx context.Context, path string, params map[string]any) error {
	return cache.NewReadThrough(c.config.Cache, c.keyer, c.policy, nil).Invalidate(ctx, path, params)
}

// Refresh exchanges the stored refresh token for a new access token.
// It shares any refresh already in flight.
func (c *Client) Refresh(ctx context.Context) error {
	if c.refresher == nil {
		return refresh.ErrMissingEndpoint
	}
	return c.refresher.Refresh(ctx, c.config.TokenStore.AccessToken(ctx))
}
