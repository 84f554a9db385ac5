// Package refresh exchanges a refresh token for a new access token.
//
// A Coordinator owns one refresh endpoint and one token store. Concurrent
// calls to Refresh share a single in-flight exchange, so a burst of
// authorization failures costs one round trip and every caller observes
// the same outcome. A caller whose stale access token has already been
// replaced by a sibling's refresh returns immediately.
package refresh
