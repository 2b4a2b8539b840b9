package entity

import "errors"

// Sentinel errors for domain layer operations.
var (
	// ErrNilError indicates that a notice was requested without an error value
	ErrNilError = errors.New("nil error value")
)
