package cache

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// FetchFunc performs the request behind a cache lookup.
type FetchFunc func(ctx context.Context) ([]byte, error)

// SafeMethods are the methods whose responses may be cached.
var SafeMethods = []string{http.MethodGet}

// IsSafeMethod reports whether responses to method may be cached.
// Matching is case-insensitive.
func IsSafeMethod(method string) bool {
	for _, m := range SafeMethods {
		if strings.EqualFold(method, m) {
			return true
		}
	}
	return false
}

// Observer is notified of every cache lookup.
type Observer func(ctx context.Context, key string, hit bool)

// Lookup describes one cacheable request.
type Lookup struct {
	Method string
	Path   string
	Params map[string]any

	// Enabled overrides the policy's Enabled flag when non-nil.
	Enabled *bool

	// TTL overrides the policy's DefaultTTL when positive.
	TTL time.Duration
}

// ReadThrough wraps request execution with caching.
type ReadThrough struct {
	cache    Cache
	keyer    Keyer
	policy   Policy
	observer Observer
}

// NewReadThrough creates a new read-through cache wrapper.
// If keyer is nil, a RequestKeyer is used.
func NewReadThrough(cache Cache, keyer Keyer, policy Policy, observer Observer) *ReadThrough {
	if keyer == nil {
		keyer = NewRequestKeyer()
	}
	return &ReadThrough{
		cache:    cache,
		keyer:    keyer,
		policy:   policy,
		observer: observer,
	}
}

// Execute runs fetch with caching.
// On cache hit, returns the cached body without calling fetch and reports
// hit=true. On miss, calls fetch and caches a successful result.
// Errors are NOT cached. Unsafe methods bypass the cache entirely.
func (r *ReadThrough) Execute(ctx context.Context, l Lookup, fetch FetchFunc) (body []byte, hit bool, err error) {
	if r.cache == nil || !IsSafeMethod(l.Method) || !r.enabled(l) {
		body, err = fetch(ctx)
		return body, false, err
	}

	key, err := r.keyer.Key(l.Path, l.Params)
	if err != nil {
		// Key generation failed - execute without caching
		body, err = fetch(ctx)
		return body, false, err
	}

	if cached, ok := r.cache.Get(ctx, key); ok {
		r.notify(ctx, key, true)
		return cached, true, nil
	}
	r.notify(ctx, key, false)

	body, err = fetch(ctx)
	if err != nil {
		return body, false, err
	}

	_ = r.cache.Set(ctx, key, body, r.policy.EffectiveTTL(l.TTL))
	return body, false, nil
}

// Invalidate drops the entry for path and params.
func (r *ReadThrough) Invalidate(ctx context.Context, path string, params map[string]any) error {
	if r.cache == nil {
		return ErrNilCache
	}
	key, err := r.keyer.Key(path, params)
	if err != nil {
		return err
	}
	return r.cache.Delete(ctx, key)
}

func (r *ReadThrough) enabled(l Lookup) bool {
	if l.Enabled != nil {
		return *l.Enabled
	}
	return r.policy.ShouldCache()
}

func (r *ReadThrough) notify(ctx context.Context, key string, hit bool) {
	if r.observer != nil {
		r.observer(ctx, key, hit)
	}
}
