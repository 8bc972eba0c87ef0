// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Database errors.
	ErrNotFound = errors.New("not found")

	// Classification errors.
	ErrClassifierUnavailable = errors.New("classifier unavailable")
	ErrNoSuggestion          = errors.New("classifier returned no suggestion")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)
