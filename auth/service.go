package auth

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonwraymond/restpipe/client"
	"github.com/jonwraymond/restpipe/observe"
	"github.com/jonwraymond/restpipe/token"
)

// Session is the outcome of a login or registration.
type Session struct {
	Tokens token.Pair

	// User is the optional user object returned by the backend.
	User json.RawMessage
}

// DecodeUser unmarshals the user object into v. A missing user leaves v
// untouched.
func (s *Session) DecodeUser(v any) error {
	if s == nil || len(s.User) == 0 {
		return nil
	}
	return json.Unmarshal(s.User, v)
}

type authResponse struct {
	Access  string          `json:"access"`
	Refresh string          `json:"refresh"`
	User    json.RawMessage `json:"user,omitempty"`
}

// Service performs session operations through a client.
type Service struct {
	client  *client.Client
	store   *token.Store
	mapping ClaimMapping
	logger  observe.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClaimMapping sets the claims Identity reads.
func WithClaimMapping(m ClaimMapping) Option {
	return func(s *Service) { s.mapping = m }
}

// NewService creates a Service that stores sessions in c's token store.
func NewService(c *client.Client, opts ...Option) (*Service, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	s := &Service{
		client: c,
		store:  c.TokenStore(),
		logger: c.Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Login posts credentials to the login endpoint and stores the returned
// token pair.
func (s *Service) Login(ctx context.Context, credentials any) (*Session, error) {
	return s.authenticate(ctx, "login", s.client.AuthEndpoints().Login, credentials)
}

// Register posts payload to the register endpoint and stores the returned
// token pair.
func (s *Service) Register(ctx context.Context, payload any) (*Session, error) {
	return s.authenticate(ctx, "register", s.client.AuthEndpoints().Register, payload)
}

func (s *Service) authenticate(ctx context.Context, op, endpoint string, body any) (*Session, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("%w: %s", ErrEndpointNotConfigured, op)
	}

	out, err := client.DecodeJSON[authResponse](
		s.client.Post(ctx, endpoint, body, client.WithoutAuth(), client.WithRetry(false)),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: %s: %w", op, err)
	}
	if out.Access == "" {
		return nil, fmt.Errorf("%w: %s response has no access token", ErrInvalidAuthResponse, op)
	}

	pair := token.Pair{Access: out.Access, Refresh: out.Refresh}
	if err := s.store.Save(ctx, pair); err != nil {
		return nil, fmt.Errorf("auth: %s: %w", op, err)
	}
	s.logger.Info(ctx, "session started", observe.Field{Key: "operation", Value: op})

	return &Session{Tokens: pair, User: out.User}, nil
}

// Logout notifies the logout endpoint, if configured, and clears the
// stored tokens. Endpoint failures are logged and otherwise ignored; only
// a failure to clear the store is returned.
func (s *Service) Logout(ctx context.Context) error {
	if endpoint := s.client.AuthEndpoints().Logout; endpoint != "" {
		if refresh := s.store.RefreshToken(ctx); refresh != "" {
			// The refresh token identifies the session; sending it bare keeps
			// an expired access token from triggering a refresh here.
			_, err := s.client.Post(ctx, endpoint, map[string]string{"refresh": refresh},
				client.WithoutAuth(), client.WithRetry(false))
			if err != nil {
				s.logger.Warn(ctx, "logout endpoint failed",
					observe.Field{Key: "error", Value: err.Error()},
				)
			}
		}
	}

	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	s.logger.Info(ctx, "session ended")
	return nil
}

// IsAuthenticated reports whether a stored access token is present and
// unexpired. A malformed token counts as unauthenticated.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	return s.store.IsAccessTokenValid(ctx)
}

// Identity decodes the stored access token.
func (s *Service) Identity(ctx context.Context) (*Identity, error) {
	access := s.store.AccessToken(ctx)
	if access == "" {
		return nil, ErrNotAuthenticated
	}
	claims, err := token.ParseClaims(access)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	}
	return IdentityFromClaims(claims, s.mapping), nil
}
