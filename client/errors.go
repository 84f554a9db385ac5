package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingBaseURL indicates Config.BaseURL is empty.
	ErrMissingBaseURL = errors.New("client: base URL is required")

	// ErrInvalidBaseURL indicates Config.BaseURL is not an absolute URL.
	ErrInvalidBaseURL = errors.New("client: base URL must be absolute")

	// ErrTransport wraps failures below HTTP: DNS, connection and read errors.
	ErrTransport = errors.New("client: transport failure")

	// ErrUnauthorized matches an *APIError with status 401.
	ErrUnauthorized = errors.New("client: unauthorized")

	// ErrEncodeBody indicates the request body could not be encoded.
	ErrEncodeBody = errors.New("client: encode request body")

	// ErrInvalidParams indicates query parameters could not be encoded.
	ErrInvalidParams = errors.New("client: invalid query parameters")
)

// APIError is returned for responses outside the 2xx range.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("client: %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is reports ErrUnauthorized for 401 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// StatusCode extracts the HTTP status from an *APIError in err's chain.
// It returns 0 when err carries no response.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
