package cache

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
)

var (
	ErrNilCache   = errors.New("cache: cache is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
)

// Cache holds response bodies keyed by request.
//
// Implementations must be safe for concurrent use. A miss and an expired
// entry look the same to Get.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value for ttl. A ttl <= 0 stores nothing.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete drops key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ValidateKey rejects blank keys and keys containing control characters.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.ContainsFunc(key, unicode.IsControl) {
		return ErrInvalidKey
	}
	return nil
}
