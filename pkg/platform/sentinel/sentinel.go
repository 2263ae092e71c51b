package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: entity does not exist in store
// - ErrConflict: create collided with an existing record (duplicate key)
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnsupported: store cannot serve the requested query plan directly
// - ErrUnavailable: store or resource temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnsupported  = errors.New("unsupported query")
	ErrUnavailable  = errors.New("unavailable")
)
