package store

import (
	"context"
	"fmt"
	"sync"

	"ballotbox/internal/ballot"
	"ballotbox/internal/query"
	"ballotbox/pkg/platform/sentinel"
)

// InMemoryVoteStore keeps idempotency records in memory for tests/dev.
// Create is atomic under the store mutex: of two concurrent creates for the
// same fingerprint, exactly one wins.
type InMemoryVoteStore struct {
	mu    sync.RWMutex
	votes map[string]*ballot.Vote
}

// NewMemoryVotes constructs an empty in-memory vote store.
func NewMemoryVotes() *InMemoryVoteStore {
	return &InMemoryVoteStore{votes: make(map[string]*ballot.Vote)}
}

func (s *InMemoryVoteStore) Create(_ context.Context, v *ballot.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.votes[v.Fingerprint]; ok {
		return fmt.Errorf("vote record already exists: %w", sentinel.ErrConflict)
	}
	cp := *v
	s.votes[v.Fingerprint] = &cp
	return nil
}

func (s *InMemoryVoteStore) Exists(_ context.Context, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.votes[fingerprint]
	return ok, nil
}

func (s *InMemoryVoteStore) CountByElection(_ context.Context, electionID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, v := range s.votes {
		if v.ElectionID == electionID {
			n++
		}
	}
	return n, nil
}

// Delete removes a vote record. Only the memory transaction runner calls
// this, to roll back a staged create when a later step of the atomic unit
// fails.
func (s *InMemoryVoteStore) Delete(_ context.Context, fingerprint string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.votes, fingerprint)
}

// InMemoryHistoryStore keeps the voting-history log in memory for tests/dev.
// No query capability: listings always take the planner's degraded path.
type InMemoryHistoryStore struct {
	mu      sync.RWMutex
	entries []ballot.HistoryEntry
}

// NewMemoryHistory constructs an empty in-memory history store.
func NewMemoryHistory() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{}
}

func (s *InMemoryHistoryStore) Append(_ context.Context, entry ballot.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

type historySource struct {
	store *InMemoryHistoryStore
}

func (hs historySource) Query(context.Context, query.Plan) ([]ballot.HistoryEntry, error) {
	return nil, sentinel.ErrUnsupported
}

func (hs historySource) Scan(context.Context) ([]ballot.HistoryEntry, error) {
	hs.store.mu.RLock()
	defer hs.store.mu.RUnlock()
	out := make([]ballot.HistoryEntry, len(hs.store.entries))
	copy(out, hs.store.entries)
	return out, nil
}

func (s *InMemoryHistoryStore) ListBySubject(ctx context.Context, subject string) ([]ballot.HistoryEntry, bool, error) {
	res, err := query.Execute(ctx, historySource{store: s},
		query.Plan{Name: "history_by_subject"},
		func(e ballot.HistoryEntry) bool { return e.Subject == subject },
		HistoryOrder,
	)
	if err != nil {
		return nil, false, err
	}
	return res.Items, res.Degraded, nil
}
