package config

import "errors"

var (
	// ErrMissingBaseURL indicates baseurl is unset.
	ErrMissingBaseURL = errors.New("config: baseurl is required")

	// ErrInvalidBaseURL indicates baseurl is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("config: baseurl must be an absolute http or https URL")

	// ErrInvalidStorage indicates the token storage settings are unusable.
	ErrInvalidStorage = errors.New("config: invalid token storage")

	// ErrInvalidValue indicates a numeric or duration setting is out of range.
	ErrInvalidValue = errors.New("config: invalid value")
)
