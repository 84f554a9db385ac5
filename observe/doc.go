// Package observe provides observability primitives for outbound requests.
//
// An Observer bundles an OpenTelemetry tracer and meter with a structured
// JSON logger. Middleware wraps one logical request with a span, request
// metrics and a completion log line. The client records cache lookups,
// retries and token refreshes through the same Metrics.
//
// Log fields whose keys name credentials (token, access, refresh,
// authorization and similar) are always written as "[REDACTED]".
package observe
