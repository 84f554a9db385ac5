package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/restpipe/cache"
	"github.com/jonwraymond/restpipe/observe"
	"github.com/jonwraymond/restpipe/resilience"
)

// call is one logical request, built once and dispatched one or more times.
type call struct {
	meta    observe.RequestMeta
	url     string
	body    []byte
	hasBody bool
	set     settings
}

// Do runs the request pipeline for any method.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*Response, error) {
	set := c.resolve(opts)

	payload, hasBody, err := encodeBody(body)
	if err != nil {
		return nil, err
	}
	target, err := c.buildURL(path, set.params)
	if err != nil {
		return nil, err
	}

	cl := &call{
		meta: observe.RequestMeta{
			Method:    method,
			Path:      path,
			RequestID: uuid.NewString(),
		},
		url:     target,
		body:    payload,
		hasBody: hasBody,
		set:     set,
	}

	var resp *Response
	_, err = c.mw.Wrap(func(ctx context.Context, _ observe.RequestMeta) (int, error) {
		var err error
		resp, err = c.execute(ctx, cl)
		if err != nil {
			return StatusCode(err), err
		}
		return resp.StatusCode, nil
	})(ctx, cl.meta)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func encodeBody(body any) ([]byte, bool, error) {
	switch b := body.(type) {
	case nil:
		return nil, false, nil
	case []byte:
		return b, true, nil
	case json.RawMessage:
		return b, true, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrEncodeBody, err)
		}
		return data, true, nil
	}
}

// execute consults the cache, then dispatches on a miss.
func (c *Client) execute(ctx context.Context, cl *call) (*Response, error) {
	metrics := c.mw.Metrics()
	rt := cache.NewReadThrough(c.config.Cache, c.keyer, c.policy,
		func(ctx context.Context, _ string, hit bool) {
			metrics.RecordCacheLookup(ctx, cl.meta, hit)
		})

	var live *Response
	body, hit, err := rt.Execute(ctx, cache.Lookup{
		Method:  cl.meta.Method,
		Path:    cl.meta.Path,
		Params:  cl.set.params,
		Enabled: &cl.set.cache,
		TTL:     cl.set.cacheTTL,
	}, func(ctx context.Context) ([]byte, error) {
		resp, err := c.dispatch(ctx, cl)
		if err != nil {
			return nil, err
		}
		live = resp
		return resp.Body, nil
	})
	if err != nil {
		return nil, err
	}
	if hit {
		return &Response{StatusCode: http.StatusOK, Body: body, Cached: true}, nil
	}
	return live, nil
}

// dispatch sends the request under the retry policy and runs the
// refresh-and-replay protocol on a 401.
func (c *Client) dispatch(ctx context.Context, cl *call) (*Response, error) {
	logger := c.mw.Logger().WithRequest(cl.meta)

	if cl.set.auth && c.config.ProactiveRefresh {
		c.refreshExpired(ctx, logger)
	}

	// replayed is per logical request and survives across retry attempts,
	// so a request is replayed after a refresh at most once.
	replayed := false
	var resp *Response

	attempt := func(ctx context.Context) error {
		r, tok, err := c.send(ctx, cl)
		if errors.Is(err, ErrUnauthorized) && !replayed && c.canRefresh(cl) {
			replayed = true
			if rerr := c.refreshAfterUnauthorized(ctx, tok, logger); rerr != nil {
				return fmt.Errorf("%w: %w", err, rerr)
			}
			logger.Debug(ctx, "replaying request after token refresh")
			r, _, err = c.send(ctx, cl)
		}
		if err != nil {
			return err
		}
		resp = r
		return nil
	}

	if !cl.set.retry || cl.set.retryCount == 0 {
		if err := attempt(ctx); err != nil {
			return nil, err
		}
		return resp, nil
	}

	retry := resilience.NewRetry(resilience.RetryConfig{
		MaxRetries:   cl.set.retryCount,
		InitialDelay: cl.set.retryDelay,
		RetryIf: func(err error) bool {
			return ctx.Err() == nil && !errors.Is(err, ErrUnauthorized)
		},
		OnRetry: func(n int, err error, delay time.Duration) {
			c.mw.Metrics().RecordRetry(ctx, cl.meta, n)
			logger.Warn(ctx, "retrying request",
				observe.Field{Key: "attempt", Value: n},
				observe.Field{Key: "delay_ms", Value: delay.Milliseconds()},
				observe.Field{Key: "error", Value: err.Error()},
			)
		},
	})
	if err := retry.Execute(ctx, attempt); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) canRefresh(cl *call) bool {
	return cl.set.auth && c.config.AutoRefreshToken && c.refresher != nil
}

func (c *Client) refreshAfterUnauthorized(ctx context.Context, stale string, logger observe.Logger) error {
	err := c.refresher.Refresh(ctx, stale)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	logger.Warn(ctx, "token refresh failed, credentials cleared",
		observe.Field{Key: "error", Value: err.Error()},
	)
	if c.config.OnAuthError != nil {
		c.config.OnAuthError()
	}
	return err
}

// refreshExpired refreshes an access token that has already expired. A
// failure is left for the 401 path to report.
func (c *Client) refreshExpired(ctx context.Context, logger observe.Logger) {
	if c.refresher == nil {
		return
	}
	store := c.config.TokenStore
	access := store.AccessToken(ctx)
	if access == "" || store.IsAccessTokenValid(ctx) {
		return
	}
	if err := c.refresher.Refresh(ctx, access); err != nil {
		logger.Debug(ctx, "proactive refresh failed",
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
}

type dispatched struct {
	resp  *Response
	token string
}

// send performs one dispatch. It returns the access token it sent so a 401
// can be matched against the token that caused it.
func (c *Client) send(ctx context.Context, cl *call) (*Response, string, error) {
	d, err := resilience.Within(ctx, cl.set.timeout, func(ctx context.Context) (dispatched, error) {
		req, tok, err := c.newRequest(ctx, cl)
		if err != nil {
			return dispatched{}, err
		}

		c.mw.Logger().WithRequest(cl.meta).Debug(ctx, "dispatching request",
			observe.Field{Key: "url", Value: req.URL.Redacted()},
			observe.Field{Key: "authenticated", Value: tok != ""},
		)

		httpResp, err := c.config.HTTPClient.Do(req)
		if err != nil {
			return dispatched{}, fmt.Errorf("%w: %s %s: %w", ErrTransport, cl.meta.Method, cl.meta.Path, err)
		}
		defer func() { _ = httpResp.Body.Close() }()

		data, err := io.ReadAll(httpResp.Body)
		if err != nil {
			return dispatched{}, fmt.Errorf("%w: read body: %w", ErrTransport, err)
		}

		out := dispatched{
			resp:  &Response{StatusCode: httpResp.StatusCode, Header: httpResp.Header, Body: data},
			token: tok,
		}
		if out.resp.StatusCode < 200 || out.resp.StatusCode > 299 {
			return out, &APIError{
				Method:     cl.meta.Method,
				Path:       cl.meta.Path,
				StatusCode: out.resp.StatusCode,
				Body:       data,
			}
		}
		return out, nil
	})
	return d.resp, d.token, err
}

// newRequest builds the wire request, reading the access token now so
// every attempt carries the latest one.
func (c *Client) newRequest(ctx context.Context, cl *call) (*http.Request, string, error) {
	var body io.Reader
	if cl.hasBody {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.meta.Method, cl.url, body)
	if err != nil {
		return nil, "", fmt.Errorf("client: create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if cl.hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range cl.set.headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("X-Request-ID", cl.meta.RequestID)

	var tok string
	if cl.set.auth && req.Header.Get("Authorization") == "" {
		tok = c.config.TokenStore.AccessToken(ctx)
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, tok, nil
}
