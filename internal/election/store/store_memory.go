package store

import (
	"context"
	"fmt"
	"sync"

	"ballotbox/internal/election"
	"ballotbox/internal/query"
	"ballotbox/pkg/platform/sentinel"
)

// InMemoryStore keeps elections and candidates in memory for tests/dev.
//
// It declares no query capability, so candidate listings always take the
// planner's degraded scan path; the final ordering is identical to the
// indexed path by construction.
type InMemoryStore struct {
	mu         sync.RWMutex
	elections  map[string]*election.Election
	candidates map[string]*election.Candidate
}

// NewMemory constructs an empty in-memory election store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		elections:  make(map[string]*election.Election),
		candidates: make(map[string]*election.Candidate),
	}
}

func (s *InMemoryStore) CreateElection(_ context.Context, e *election.Election) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.elections[e.ID]; ok {
		return fmt.Errorf("election already exists: %w", sentinel.ErrConflict)
	}
	cp := *e
	s.elections[e.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindElection(_ context.Context, id string) (*election.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.elections[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, fmt.Errorf("election not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) ListElections(_ context.Context) ([]*election.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*election.Election, 0, len(s.elections))
	for _, e := range s.elections {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) ExecuteElection(_ context.Context, id string, validate func(*election.Election) error, mutate func(*election.Election)) (*election.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elections[id]
	if !ok {
		return nil, fmt.Errorf("election not found: %w", sentinel.ErrNotFound)
	}
	if err := validate(e); err != nil {
		return nil, err
	}
	mutate(e)
	cp := *e
	return &cp, nil
}

func (s *InMemoryStore) CreateCandidate(_ context.Context, c *election.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[c.ID]; ok {
		return fmt.Errorf("candidate already exists: %w", sentinel.ErrConflict)
	}
	if _, ok := s.elections[c.ElectionID]; !ok {
		return fmt.Errorf("election not found: %w", sentinel.ErrNotFound)
	}
	cp := *c
	s.candidates[c.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindCandidate(_ context.Context, id string) (*election.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.candidates[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, fmt.Errorf("candidate not found: %w", sentinel.ErrNotFound)
}

// candidateSource adapts the store to the query planner. No index support in
// memory: Query always reports the plan unsupported.
type candidateSource struct {
	store *InMemoryStore
}

func (cs candidateSource) Query(context.Context, query.Plan) ([]*election.Candidate, error) {
	return nil, sentinel.ErrUnsupported
}

func (cs candidateSource) Scan(context.Context) ([]*election.Candidate, error) {
	cs.store.mu.RLock()
	defer cs.store.mu.RUnlock()
	out := make([]*election.Candidate, 0, len(cs.store.candidates))
	for _, c := range cs.store.candidates {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (s *InMemoryStore) CandidatesByElection(ctx context.Context, electionID string) ([]*election.Candidate, bool, error) {
	res, err := query.Execute(ctx, candidateSource{store: s},
		query.Plan{Name: "candidates_by_election"},
		func(c *election.Candidate) bool { return c.ElectionID == electionID },
		CandidateOrder,
	)
	if err != nil {
		return nil, false, err
	}
	return res.Items, res.Degraded, nil
}

func (s *InMemoryStore) IncrementTally(_ context.Context, candidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.candidates[candidateID]
	if !ok {
		return fmt.Errorf("candidate not found: %w", sentinel.ErrNotFound)
	}
	c.VoteCount++
	return nil
}

func (s *InMemoryStore) IncrementTotalVotes(_ context.Context, electionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.elections[electionID]
	if !ok {
		return fmt.Errorf("election not found: %w", sentinel.ErrNotFound)
	}
	e.TotalVotes++
	return nil
}
