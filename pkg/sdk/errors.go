package sdk

import (
	"errors"
	"fmt"
)

// Sentinel errors mapped from API error codes.
var (
	// ErrNoRegion indicates the query had neither bounds nor polygon.
	ErrNoRegion = errors.New("sdk: no region")
	// ErrInvalidRegion indicates a malformed region.
	ErrInvalidRegion = errors.New("sdk: invalid region")
	// ErrValidation indicates a rejected payload.
	ErrValidation = errors.New("sdk: validation failed")
	// ErrUnauthorized indicates a missing or invalid API key.
	ErrUnauthorized = errors.New("sdk: unauthorized")
	// ErrNotFound indicates a listing key the backend does not know.
	ErrNotFound = errors.New("sdk: not found")
)

// APIError carries the machine-readable code and message of a non-2xx
// response. It wraps the matching sentinel when one applies.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sdk: api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps well-known codes onto sentinels for errors.Is checks.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "no_region":
		return ErrNoRegion
	case "invalid_region":
		return ErrInvalidRegion
	case "validation_failed":
		return ErrValidation
	case "unauthorized":
		return ErrUnauthorized
	case "not_found":
		return ErrNotFound
	default:
		return nil
	}
}
