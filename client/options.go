package client

import (
	"maps"
	"time"
)

// RequestOption overrides client defaults for one call.
type RequestOption func(*requestOptions)

type requestOptions struct {
	params     map[string]any
	headers    map[string]string
	timeout    time.Duration
	cache      *bool
	cacheTTL   time.Duration
	retry      *bool
	retryCount *int
	retryDelay time.Duration
	noAuth     bool
}

// WithParams adds query parameters. Slice values become repeated keys.
func WithParams(params map[string]any) RequestOption {
	return func(o *requestOptions) {
		if o.params == nil {
			o.params = make(map[string]any, len(params))
		}
		maps.Copy(o.params, params)
	}
}

// WithParam adds one query parameter.
func WithParam(key string, value any) RequestOption {
	return WithParams(map[string]any{key: value})
}

// WithHeader sets one request header.
func WithHeader(key, value string) RequestOption {
	return WithHeaders(map[string]string{key: value})
}

// WithHeaders sets request headers, overriding Config.DefaultHeaders.
// An explicit Authorization header suppresses token injection.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		maps.Copy(o.headers, headers)
	}
}

// WithTimeout bounds each dispatch of this call.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.timeout = d }
}

// WithCache enables or disables response caching for this call.
// It has no effect on methods other than GET.
func WithCache(enabled bool) RequestOption {
	return func(o *requestOptions) { o.cache = &enabled }
}

// WithCacheDuration sets the cache TTL for this call.
func WithCacheDuration(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.cacheTTL = d }
}

// WithRetry enables or disables retries for this call.
func WithRetry(enabled bool) RequestOption {
	return func(o *requestOptions) { o.retry = &enabled }
}

// WithRetryCount sets the number of retries for this call.
func WithRetryCount(n int) RequestOption {
	return func(o *requestOptions) { o.retryCount = &n }
}

// WithRetryDelay sets the initial retry delay for this call.
func WithRetryDelay(d time.Duration) RequestOption {
	return func(o *requestOptions) { o.retryDelay = d }
}

// WithoutAuth sends the request without a bearer token and disables the
// refresh-and-replay protocol for it.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) { o.noAuth = true }
}

// settings are the effective values for one call.
type settings struct {
	params     map[string]any
	headers    map[string]string
	timeout    time.Duration
	cache      bool
	cacheTTL   time.Duration
	retry      bool
	retryCount int
	retryDelay time.Duration
	auth       bool
}

// resolve merges per-call options over the client config. Per-call values
// win; unset ones fall back to the config, which already carries defaults.
func (c *Client) resolve(opts []RequestOption) settings {
	var o requestOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	s := settings{
		params:     o.params,
		headers:    make(map[string]string, len(c.config.DefaultHeaders)+len(o.headers)),
		timeout:    c.config.DefaultTimeout,
		cache:      c.config.EnableCache,
		cacheTTL:   c.config.CacheDuration,
		retry:      c.config.EnableRetry,
		retryCount: c.config.RetryCount,
		retryDelay: c.config.RetryDelay,
		auth:       !o.noAuth,
	}
	maps.Copy(s.headers, c.config.DefaultHeaders)
	maps.Copy(s.headers, o.headers)

	if o.timeout > 0 {
		s.timeout = o.timeout
	}
	if o.cache != nil {
		s.cache = *o.cache
	}
	if o.cacheTTL > 0 {
		s.cacheTTL = o.cacheTTL
	}
	if o.retry != nil {
		s.retry = *o.retry
	}
	if o.retryCount != nil && *o.retryCount >= 0 {
		s.retryCount = *o.retryCount
	}
	if o.retryDelay > 0 {
		s.retryDelay = o.retryDelay
	}
	return s
}
