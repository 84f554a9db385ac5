package cache

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Keyer generates deterministic cache keys for read requests.
//
// Contract:
// - Determinism: same inputs must produce same key, regardless of map iteration order.
// - Uniqueness: distinct (path, params) pairs must produce distinct keys.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	Key(path string, params map[string]any) (string, error)
}

// RequestKeyer builds keys of the form <JSON path><canonical JSON params>.
//
// Nothing is hashed. The path is a self-delimiting JSON string, so distinct
// (path, params) pairs always produce distinct keys.
type RequestKeyer struct{}

// NewRequestKeyer creates a new request keyer.
func NewRequestKeyer() *RequestKeyer {
	return &RequestKeyer{}
}

// Key generates a deterministic cache key.
func (k *RequestKeyer) Key(path string, params map[string]any) (string, error) {
	var canonical []byte
	if len(params) == 0 {
		canonical = []byte("{}")
	} else {
		var err error
		canonical, err = canonicalizeMap(params)
		if err != nil {
			return "", fmt.Errorf("cache: failed to canonicalize params: %w", err)
		}
	}

	quoted, err := json.Marshal(path)
	if err != nil {
		return "", fmt.Errorf("cache: failed to encode path: %w", err)
	}

	key := string(quoted) + string(canonical)
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// canonicalize produces a deterministic JSON representation of the input.
// Maps are sorted by key to ensure consistent ordering.
func canonicalize(v any) ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}

	switch val := v.(type) {
	case map[string]any:
		return canonicalizeMap(val)
	case map[string]string:
		m := make(map[string]any, len(val))
		for k, s := range val {
			m[k] = s
		}
		return canonicalizeMap(m)
	case []any:
		return canonicalizeSlice(val)
	default:
		return json.Marshal(v)
	}
}

func canonicalizeMap(m map[string]any) ([]byte, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := []byte("{")
	for i, k := range keys {
		if i > 0 {
			result = append(result, ',')
		}

		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		result = append(result, keyBytes...)
		result = append(result, ':')

		valBytes, err := canonicalize(m[k])
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, '}')

	return result, nil
}

func canonicalizeSlice(s []any) ([]byte, error) {
	result := []byte("[")
	for i, v := range s {
		if i > 0 {
			result = append(result, ',')
		}

		valBytes, err := canonicalize(v)
		if err != nil {
			return nil, err
		}
		result = append(result, valBytes...)
	}
	result = append(result, ']')

	return result, nil
}

// Ensure RequestKeyer implements Keyer
var _ Keyer = (*RequestKeyer)(nil)
