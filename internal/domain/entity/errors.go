package entity

import "errors"

// Sentinel errors shared across the service. Callers classify failures with
// errors.Is; lower layers wrap these with fmt.Errorf and %w to add context.
var (
	// ErrInsufficientData means an analytics operation has fewer records
	// than it needs. Recoverable by calling again once more data exists.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNotFound means no persisted record exists for the requested currency.
	ErrNotFound = errors.New("record not found")

	// ErrExternalService means a provider call failed with a non-retryable
	// status or could not be completed at all.
	ErrExternalService = errors.New("external service error")

	// ErrStorage means the persistence layer failed during a read or write.
	ErrStorage = errors.New("storage error")

	// ErrValidation means malformed input reached a boundary.
	ErrValidation = errors.New("validation error")
)
