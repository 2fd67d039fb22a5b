package contracts

import "errors"

// Error taxonomy shared across layers. Wrap with %w, test with errors.Is.
var (
	// Collection input
	ErrSigning      = errors.New("upstream signing failed")
	ErrFetch        = errors.New("upstream fetch failed")
	ErrEmptyPayload = errors.New("no rankings in fetched payload")

	// Storage
	ErrPersistence = errors.New("persistence failed")

	// Another collection cycle holds the guard
	ErrCycleInProgress = errors.New("collection cycle already in progress")

	// Query input validation
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidParameter = errors.New("invalid parameter")
)
