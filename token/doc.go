// Package token persists access/refresh token pairs and answers whether the
// current access token is still usable.
//
// A Store serializes the pair as a single JSON blob under one key of a
// pluggable Storage backend. Three backends ship with the package:
//
//   - MemoryStorage: process-local, lost on exit.
//   - FileStorage: a JSON document on disk that survives restarts.
//   - RedisStorage: shared between processes through Redis.
//
// Access token expiry is decoded from the token's exp claim on every check.
// Undecodable tokens are reported as invalid rather than as errors.
package token
