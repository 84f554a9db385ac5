package token

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Storage is an abstract key to string store.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get returns ("", false, nil) on miss; errors are reserved for backend failures.
// - Idempotency: Remove on a missing key is not an error.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Backend names accepted by OpenStorage.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// StorageConfig selects and configures a storage backend.
type StorageConfig struct {
	// Backend is one of BackendMemory, BackendFile or BackendRedis.
	// Default: BackendMemory
	Backend string

	// Key is the storage key the token pair lives under.
	// Default: "restpipe.tokens"
	Key string

	// Path is the file used by the file backend.
	Path string

	// Redis configures the redis backend.
	Redis RedisConfig
}

// DefaultStorageKey is the key used when StorageConfig.Key is empty.
const DefaultStorageKey = "restpipe.tokens"

// OpenStorage builds the backend named by cfg.Backend.
func OpenStorage(cfg StorageConfig) (Storage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return NewMemoryStorage(), nil
	case BackendFile:
		fs, err := NewFileStorage(cfg.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case BackendRedis:
		rs, err := NewRedisStorage(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// MemoryStorage keeps values in a process-local map.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *MemoryStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
	return nil
}

// Remove deletes key. Idempotent.
func (s *MemoryStorage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// Ensure MemoryStorage implements Storage
var _ Storage = (*MemoryStorage)(nil)
