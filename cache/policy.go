package cache

import "time"

// DefaultTTL is the cache lifetime used when nothing else is configured.
const DefaultTTL = 5 * time.Minute

// Policy configures caching behavior.
type Policy struct {
	// Enabled turns caching on for safe methods.
	Enabled bool

	// DefaultTTL is the TTL to use when none is specified.
	// Default: 5 minutes
	DefaultTTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration
}

// DefaultPolicy returns the default caching policy: enabled, 5 minute TTL,
// no maximum.
func DefaultPolicy() Policy {
	return Policy{
		Enabled:    true,
		DefaultTTL: DefaultTTL,
	}
}

// NoCachePolicy returns a policy that disables caching entirely.
func NoCachePolicy() Policy {
	return Policy{}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p Policy) ShouldCache() bool {
	return p.Enabled
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p Policy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.DefaultTTL
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}

	return ttl
}
