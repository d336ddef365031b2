package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoSearchProjection indicates that no search projection was provided.
	ErrNoSearchProjection = errors.New("search is not available")
)
