package refresh

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/restpipe/observe"
	"github.com/jonwraymond/restpipe/token"
)

// DefaultTimeout bounds one exchange when Config.Timeout is unset.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of a refresh response is read.
const maxResponseBytes = 1 << 20

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config configures a Coordinator.
type Config struct {
	// Endpoint is the absolute URL of the refresh endpoint.
	Endpoint string

	// Store holds the token pair being refreshed.
	Store *token.Store

	// HTTPClient sends the exchange. Default: http.DefaultClient
	HTTPClient Doer

	// Timeout bounds one exchange. Default: 10s
	Timeout time.Duration

	// Headers are added to the exchange request. Authorization is never sent.
	Headers map[string]string

	// RotateRefreshToken stores a refresh token returned by the endpoint
	// in place of the current one. When false the current one is kept.
	RotateRefreshToken bool

	// Metrics records refresh outcomes. Optional.
	Metrics observe.Metrics

	// Logger receives refresh diagnostics. Optional.
	Logger observe.Logger
}

// Coordinator performs single-flight token refreshes.
type Coordinator struct {
	config  Config
	sfGroup singleflight.Group
}

// New creates a Coordinator.
func New(config Config) (*Coordinator, error) {
	if config.Endpoint == "" {
		return nil, ErrMissingEndpoint
	}
	if config.Store == nil {
		return nil, ErrNilStore
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.Metrics == nil {
		config.Metrics = observe.NopMetrics()
	}
	if config.Logger == nil {
		config.Logger = observe.NopLogger()
	}
	return &Coordinator{config: config}, nil
}

// Endpoint returns the refresh endpoint URL.
func (c *Coordinator) Endpoint() string {
	return c.config.Endpoint
}

// Refresh replaces the stored access token.
//
// stale is the access token the caller last sent. If the store already
// holds a different access token, another caller has refreshed it and
// Refresh returns nil without network activity.
//
// Concurrent calls join one in-flight exchange. The exchange is detached
// from ctx so one caller giving up does not fail the others; ctx only
// bounds how long this caller waits.
func (c *Coordinator) Refresh(ctx context.Context, stale string) error {
	ch := c.sfGroup.DoChan("refresh", func() (any, error) {
		exCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.Timeout)
		defer cancel()
		return nil, c.exchange(exCtx, stale)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Coordinator) exchange(ctx context.Context, stale string) error {
	pair, _, err := c.config.Store.Load(ctx)
	if err != nil {
		return c.fail(ctx, err)
	}
	if pair.Access != stale && pair.Access != "" {
		c.config.Metrics.RecordRefresh(ctx, observe.RefreshSkipped)
		c.config.Logger.Debug(ctx, "access token already refreshed")
		return nil
	}
	if pair.Refresh == "" {
		return c.fail(ctx, ErrNoRefreshToken)
	}

	access, rotated, err := c.post(ctx, pair.Refresh)
	if err != nil {
		return c.fail(ctx, err)
	}

	next := token.Pair{Access: access, Refresh: pair.Refresh}
	if c.config.RotateRefreshToken && rotated != "" {
		next.Refresh = rotated
	}
	if err := c.config.Store.Save(ctx, next); err != nil {
		return c.fail(ctx, fmt.Errorf("store tokens: %w", err))
	}

	c.config.Metrics.RecordRefresh(ctx, observe.RefreshSuccess)
	c.config.Logger.Info(ctx, "access token refreshed",
		observe.Field{Key: "rotated", Value: next.Refresh != pair.Refresh},
	)
	return nil
}

type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (c *Coordinator) post(ctx context.Context, refreshToken string) (access, rotated string, err error) {
	body, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return "", "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.config.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Del("Authorization")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("post refresh: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var out refreshResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", "", fmt.Errorf("decode response: %w", err)
	}
	if out.Access == "" {
		return "", "", errors.New("response carries no access token")
	}
	return out.Access, out.Refresh, nil
}

// fail clears the store and wraps cause with ErrRefreshFailed.
func (c *Coordinator) fail(ctx context.Context, cause error) error {
	if err := c.config.Store.Clear(ctx); err != nil {
		c.config.Logger.Warn(ctx, "clear tokens after failed refresh",
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
	c.config.Metrics.RecordRefresh(ctx, observe.RefreshFailure)
	c.config.Logger.Warn(ctx, "token refresh failed",
		observe.Field{Key: "error", Value: cause.Error()},
	)
	if errors.Is(cause, ErrRefreshFailed) {
		return cause
	}
	return fmt.Errorf("%w: %w", ErrRefreshFailed, cause)
}
