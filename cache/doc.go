// Package cache provides a TTL cache for idempotent read responses.
//
// It provides a Cache interface with a memory implementation, deterministic
// request keys built from a path and its canonicalized query parameters, a
// TTL policy and a read-through wrapper that refuses to cache unsafe methods.
package cache
