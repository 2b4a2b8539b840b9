package config

import "errors"

// Sentinel errors returned by Validate and the loaders.
var (
	// ErrInvalidConfig wraps every validation failure
	ErrInvalidConfig = errors.New("invalid errnotice configuration")

	// ErrMissingAPIKey indicates reporting is enabled without an API key
	ErrMissingAPIKey = errors.New("api key is required")

	// ErrMissingEndpoint indicates reporting is enabled without an endpoint
	ErrMissingEndpoint = errors.New("endpoint is required")
)
