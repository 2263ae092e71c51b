package store

import (
	"context"
	"fmt"
	"sync"

	"ballotbox/internal/voter"
	"ballotbox/pkg/platform/sentinel"
)

// InMemoryStore keeps voters in memory for tests/dev.
type InMemoryStore struct {
	mu        sync.RWMutex
	byID      map[string]*voter.Voter
	bySubject map[string]string
}

// NewMemory constructs an empty in-memory voter store.
func NewMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:      make(map[string]*voter.Voter),
		bySubject: make(map[string]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, v *voter.Voter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bySubject[v.Subject]; ok {
		return fmt.Errorf("voter subject already registered: %w", sentinel.ErrConflict)
	}
	cp := *v
	s.byID[v.ID] = &cp
	s.bySubject[v.Subject] = v.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*voter.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.byID[id]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, fmt.Errorf("voter not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindBySubject(_ context.Context, subject string) (*voter.Voter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.bySubject[subject]; ok {
		cp := *s.byID[id]
		return &cp, nil
	}
	return nil, fmt.Errorf("voter not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) Execute(_ context.Context, id string, validate func(*voter.Voter) error, mutate func(*voter.Voter)) (*voter.Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("voter not found: %w", sentinel.ErrNotFound)
	}
	if err := validate(v); err != nil {
		return nil, err
	}
	mutate(v)
	cp := *v
	return &cp, nil
}
