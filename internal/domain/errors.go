package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrNoRegion signals a query with neither viewport bounds nor a polygon.
	ErrNoRegion = errors.New("no search region")
	// ErrInvalidRegion signals a malformed region descriptor.
	ErrInvalidRegion = errors.New("invalid search region")
	// ErrInvalidListing signals a listing that cannot be placed on the map.
	ErrInvalidListing = errors.New("invalid listing")
	// ErrQueryFailed signals a listings query service failure.
	ErrQueryFailed = errors.New("query failed")
)
