package refresh

import "errors"

var (
	// ErrRefreshFailed wraps every failed exchange. The token store has
	// been cleared when it is returned.
	ErrRefreshFailed = errors.New("refresh: token refresh failed")

	// ErrNoRefreshToken indicates no refresh token was stored. No request
	// was sent.
	ErrNoRefreshToken = errors.New("refresh: no refresh token")

	// ErrMissingEndpoint indicates the Coordinator has no refresh endpoint.
	ErrMissingEndpoint = errors.New("refresh: endpoint is required")

	// ErrNilStore indicates the Coordinator has no token store.
	ErrNilStore = errors.New("refresh: token store is nil")
)
