package token

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Pair is an access/refresh credential pair.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// IsZero reports whether neither token is set.
func (p Pair) IsZero() bool {
	return p.Access == "" && p.Refresh == ""
}

// Store persists one token pair in a Storage backend.
//
// Contract:
// - Concurrency: safe for concurrent use when the backend is.
// - Freshness: nothing is cached; every call reads the backend.
type Store struct {
	storage Storage
	key     string
	now     func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey sets the storage key. Default: DefaultStorageKey.
func WithKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock sets the time source used for expiry checks.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a token store over storage.
func NewStore(storage Storage, opts ...StoreOption) (*Store, error) {
	if storage == nil {
		return nil, ErrNilStorage
	}
	s := &Store{
		storage: storage,
		key:     DefaultStorageKey,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Key returns the storage key the pair lives under.
func (s *Store) Key() string {
	return s.key
}

// Save overwrites the stored pair.
func (s *Store) Save(ctx context.Context, pair Pair) error {
	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("token: encode pair: %w", err)
	}
	return s.storage.Set(ctx, s.key, string(data))
}

// Load returns the stored pair. The boolean is false when nothing is stored
// or the stored blob cannot be decoded.
func (s *Store) Load(ctx context.Context) (Pair, bool, error) {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil || !ok {
		return Pair{}, false, err
	}

	var pair Pair
	if err := json.Unmarshal([]byte(raw), &pair); err != nil {
		return Pair{}, false, nil
	}
	if pair.IsZero() {
		return Pair{}, false, nil
	}
	return pair, true, nil
}

// Clear removes the stored pair.
func (s *Store) Clear(ctx context.Context) error {
	return s.storage.Remove(ctx, s.key)
}

// AccessToken returns the stored access token, or "" when absent.
func (s *Store) AccessToken(ctx context.Context) string {
	pair, _, _ := s.Load(ctx)
	return pair.Access
}

// RefreshToken returns the stored refresh token, or "" when absent.
func (s *Store) RefreshToken(ctx context.Context) string {
	pair, _, _ := s.Load(ctx)
	return pair.Refresh
}

// IsAccessTokenValid reports whether the stored access token carries an exp
// claim that has not passed yet. Missing, malformed or unreadable tokens are
// invalid.
func (s *Store) IsAccessTokenValid(ctx context.Context) bool {
	pair, ok, err := s.Load(ctx)
	if err != nil || !ok || pair.Access == "" {
		return false
	}
	claims, err := ParseClaims(pair.Access)
	if err != nil {
		return false
	}
	return claims.ValidAt(s.now())
}
