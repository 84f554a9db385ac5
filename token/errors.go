package token

import "errors"

// Sentinel errors for token storage.
var (
	// ErrNilStorage is returned when a Store is built without a backend.
	ErrNilStorage = errors.New("token: storage is nil")

	// ErrUnknownBackend is returned by OpenStorage for an unrecognized backend name.
	ErrUnknownBackend = errors.New("token: unknown storage backend")

	// ErrMalformedToken is returned when an access token cannot be decoded.
	ErrMalformedToken = errors.New("token: token malformed")

	// ErrMissingExpiry is returned when an access token carries no exp claim.
	ErrMissingExpiry = errors.New("token: exp claim missing")

	// ErrMissingPath is returned when file storage is opened without a path.
	ErrMissingPath = errors.New("token: file storage path is required")

	// ErrMissingAddr is returned when redis storage has neither an address
	// nor a client.
	ErrMissingAddr = errors.New("token: redis addr is required")
)
