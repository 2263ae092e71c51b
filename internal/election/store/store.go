// Package store persists elections and candidates.
//
// Error Contract:
// All store methods follow this pattern:
//   - Return sentinel.ErrNotFound (wrapped) when the entity does not exist
//   - Return sentinel.ErrConflict (wrapped) when a create collides
//   - Return nil for successful operations
//   - Return wrapped errors with context for infrastructure failures
//
// Candidate listings run through the query planner: if the backing store
// cannot serve the ordered query directly, the planner falls back to a full
// scan with identical filter/sort semantics.
package store

import (
	"context"

	"ballotbox/internal/election"
)

// Store is the persistence boundary for elections and candidates.
type Store interface {
	CreateElection(ctx context.Context, e *election.Election) error
	FindElection(ctx context.Context, id string) (*election.Election, error)
	ListElections(ctx context.Context) ([]*election.Election, error)

	// ExecuteElection atomically validates then mutates an election, holding
	// the store's exclusivity primitive across both steps.
	ExecuteElection(ctx context.Context, id string, validate func(*election.Election) error, mutate func(*election.Election)) (*election.Election, error)

	CreateCandidate(ctx context.Context, c *election.Candidate) error
	FindCandidate(ctx context.Context, id string) (*election.Candidate, error)

	// CandidatesByElection returns an election's candidates ordered by ballot
	// position (ties by id). The bool reports whether the degraded scan path
	// served the call.
	CandidatesByElection(ctx context.Context, electionID string) ([]*election.Candidate, bool, error)

	// IncrementTally adds one to a candidate's vote count. Participates in a
	// transaction carried in context; only the ballot ledger calls this.
	IncrementTally(ctx context.Context, candidateID string) error

	// IncrementTotalVotes advances the election's informational counter.
	// Participates in a transaction carried in context.
	IncrementTotalVotes(ctx context.Context, electionID string) error
}

// CandidateOrder is the canonical candidate listing order: ballot position
// ascending, candidate id as the deterministic tie-break.
func CandidateOrder(a, b *election.Candidate) int {
	if a.Position != b.Position {
		return a.Position - b.Position
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}
