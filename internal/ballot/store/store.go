// Package store persists vote idempotency records and the voting-history log.
//
// Error Contract:
// All store methods follow this pattern:
//   - Return sentinel.ErrConflict (wrapped) when a vote record already exists
//     at the fingerprint key; this is load-bearing for exactly-once casting
//   - Return sentinel.ErrNotFound (wrapped) when the entity does not exist
//   - Return nil for successful operations
//   - Return wrapped errors with context for infrastructure failures
package store

import (
	"context"

	"ballotbox/internal/ballot"
)

// VoteStore owns the idempotency records.
type VoteStore interface {
	// Create inserts the vote record at its fingerprint key. A pre-existing
	// record fails the call (and any enclosing transaction) with ErrConflict.
	Create(ctx context.Context, v *ballot.Vote) error

	Exists(ctx context.Context, fingerprint string) (bool, error)
	CountByElection(ctx context.Context, electionID string) (int64, error)
}

// HistoryStore is the append-only voting-history log, keyed by subject.
type HistoryStore interface {
	Append(ctx context.Context, entry ballot.HistoryEntry) error

	// ListBySubject returns a subject's history, newest first. The bool
	// reports whether the degraded scan path served the call.
	ListBySubject(ctx context.Context, subject string) ([]ballot.HistoryEntry, bool, error)
}

// HistoryOrder is the canonical history order: newest first, election id as
// the deterministic tie-break.
func HistoryOrder(a, b ballot.HistoryEntry) int {
	switch {
	case a.CastAt.After(b.CastAt):
		return -1
	case a.CastAt.Before(b.CastAt):
		return 1
	case a.ElectionID < b.ElectionID:
		return -1
	case a.ElectionID > b.ElectionID:
		return 1
	default:
		return 0
	}
}
