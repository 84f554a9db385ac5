package auth

import (
	"context"
	"time"

	"github.com/jonwraymond/restpipe/health"
)

// SessionChecker reports the session state. An expired or missing session
// is degraded rather than unhealthy, since the client still works for
// unauthenticated calls.
type SessionChecker struct {
	service *Service
	now     func() time.Time
}

// NewSessionChecker creates a checker for s.
func NewSessionChecker(s *Service) *SessionChecker {
	return &SessionChecker{service: s, now: time.Now}
}

// Name returns "session".
func (c *SessionChecker) Name() string { return "session" }

// Check inspects the stored access token.
func (c *SessionChecker) Check(ctx context.Context) health.Result {
	start := c.now()
	id, err := c.service.Identity(ctx)
	if err != nil {
		return health.Degraded("no valid session").
			WithDetails(map[string]any{"authenticated": false}).
			WithDuration(c.now().Sub(start))
	}

	details := map[string]any{
		"authenticated": !id.ExpiredAt(c.now()),
		"principal":     id.Principal,
		"expires_at":    id.ExpiresAt.UTC().Format(time.RFC3339),
	}
	result := health.Healthy("session active")
	if id.ExpiredAt(c.now()) {
		result = health.Degraded("access token expired")
	}
	return result.WithDetails(details).WithDuration(c.now().Sub(start))
}

var _ health.Checker = (*SessionChecker)(nil)
