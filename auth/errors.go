package auth

import "errors"

var (
	// ErrEndpointNotConfigured indicates the requested auth endpoint is unset.
	ErrEndpointNotConfigured = errors.New("auth: endpoint not configured")

	// ErrNotAuthenticated indicates no usable access token is stored.
	ErrNotAuthenticated = errors.New("auth: not authenticated")

	// ErrInvalidAuthResponse indicates a login or register response carried
	// no access token.
	ErrInvalidAuthResponse = errors.New("auth: invalid auth response")

	// ErrNilClient indicates NewService was given no client.
	ErrNilClient = errors.New("auth: client is nil")
)
