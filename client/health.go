package client

import (
	"context"
	"net/http"
	"time"

	"github.com/jonwraymond/restpipe/health"
)

// BackendChecker reports whether the backend answers a probe request.
type BackendChecker struct {
	client *Client
	path   string
}

// NewBackendChecker probes path on c. The probe skips auth, cache and retry.
func NewBackendChecker(c *Client, path string) *BackendChecker {
	if path == "" {
		path = "/"
	}
	return &BackendChecker{client: c, path: path}
}

// Name returns "backend".
func (b *BackendChecker) Name() string { return "backend" }

// Ping sends the probe and returns its error.
func (b *BackendChecker) Ping(ctx context.Context) error {
	_, err := b.client.Get(ctx, b.path, WithoutAuth(), WithCache(false), WithRetry(false))
	return err
}

// Check maps the probe outcome to a health result. A 4xx answer means the
// backend is up but rejects the probe, which is reported as degraded.
func (b *BackendChecker) Check(ctx context.Context) health.Result {
	start := time.Now()
	err := b.Ping(ctx)
	elapsed := time.Since(start)

	details := map[string]any{
		"url":  b.client.config.BaseURL,
		"path": b.path,
	}
	status := StatusCode(err)
	if status > 0 {
		details["status"] = status
	}

	var result health.Result
	switch {
	case err == nil:
		result = health.Healthy("backend reachable")
	case status >= http.StatusBadRequest && status < http.StatusInternalServerError:
		result = health.Degraded("backend rejected probe: " + http.StatusText(status))
	default:
		result = health.Unhealthy("backend unreachable", err)
	}
	return result.WithDetails(details).WithDuration(elapsed)
}

var _ health.PingChecker = (*BackendChecker)(nil)
