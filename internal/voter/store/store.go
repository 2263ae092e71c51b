// Package store persists voter records.
//
// Error Contract:
// All store methods follow this pattern:
//   - Return sentinel.ErrNotFound (wrapped) when the entity does not exist
//   - Return sentinel.ErrConflict (wrapped) when a create collides
//   - Return nil for successful operations
//   - Return wrapped errors with context for infrastructure failures
package store

import (
	"context"

	"ballotbox/internal/voter"
)

// Store is the persistence boundary for voters.
type Store interface {
	// Create inserts a new voter. Fails with ErrConflict when the subject is
	// already registered.
	Create(ctx context.Context, v *voter.Voter) error

	FindByID(ctx context.Context, id string) (*voter.Voter, error)
	FindBySubject(ctx context.Context, subject string) (*voter.Voter, error)

	// Execute atomically validates then mutates a voter, holding the store's
	// exclusivity primitive (mutex or row lock) across both steps.
	Execute(ctx context.Context, id string, validate func(*voter.Voter) error, mutate func(*voter.Voter)) (*voter.Voter, error)
}
