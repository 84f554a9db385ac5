package secret

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// refPattern matches secretref:<provider>:<ref>. A ref ends at whitespace.
var refPattern = regexp.MustCompile(`secretref:([^:\s]+):(\S+)`)

// Resolver turns configuration values into their final form: environment
// variables are expanded first, then every secret reference is replaced
// by its provider's value. A nil *Resolver only expands the environment.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver returns a resolver over providers. When strict is set an
// empty secret is an error.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{providers: make(map[string]Provider, len(providers)), strict: strict}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds or replaces the provider under its name.
func (r *Resolver) Register(provider Provider) {
	if r == nil || provider == nil {
		return
	}
	if r.providers == nil {
		r.providers = make(map[string]Provider)
	}
	r.providers[provider.Name()] = provider
}

// ResolveValue resolves one value. References may make up the whole value
// or appear inside it, as in "Bearer secretref:env:API_TOKEN".
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil || r == nil {
		return expanded, err
	}

	// Each distinct reference is fetched once per value.
	seen := make(map[string]string)
	var firstErr error
	out := refPattern.ReplaceAllStringFunc(expanded, func(match string) string {
		if firstErr != nil {
			return match
		}
		if v, ok := seen[match]; ok {
			return v
		}
		parts := refPattern.FindStringSubmatch(match)
		v, err := r.lookup(ctx, parts[1], parts[2])
		if err != nil {
			firstErr = err
			return match
		}
		seen[match] = v
		return v
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

// ResolveMap resolves every value of input, naming the failing key.
func (r *Resolver) ResolveMap(ctx context.Context, input map[string]string) (map[string]string, error) {
	if input == nil {
		return nil, nil
	}
	out := make(map[string]string, len(input))
	for k, v := range input {
		resolved, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

// ParseSecretRef splits a value that is exactly one secret reference.
func ParseSecretRef(value string) (provider, ref string, ok bool) {
	loc := refPattern.FindStringSubmatchIndex(value)
	if loc == nil || loc[0] != 0 || loc[1] != len(value) {
		return "", "", false
	}
	return value[loc[2]:loc[3]], value[loc[4]:loc[5]], true
}

func (r *Resolver) lookup(ctx context.Context, providerName, ref string) (string, error) {
	provider, ok := r.providers[providerName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrProviderNotRegistered, providerName)
	}
	v, err := provider.Resolve(ctx, strings.TrimSpace(ref))
	if err != nil {
		return "", err
	}
	if v == "" && r.strict {
		return "", fmt.Errorf("%w: %s:%s", ErrEmptySecret, providerName, ref)
	}
	return v, nil
}

// Close closes every registered provider.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, p := range r.providers {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
