package election

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ballotbox/internal/audit"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"
)

// Store is the persistence surface the service needs. Satisfied by
// internal/election/store implementations.
type Store interface {
	CreateElection(ctx context.Context, e *Election) error
	FindElection(ctx context.Context, id string) (*Election, error)
	ListElections(ctx context.Context) ([]*Election, error)
	ExecuteElection(ctx context.Context, id string, validate func(*Election) error, mutate func(*Election)) (*Election, error)
	CreateCandidate(ctx context.Context, c *Candidate) error
	FindCandidate(ctx context.Context, id string) (*Candidate, error)
	CandidatesByElection(ctx context.Context, electionID string) ([]*Candidate, bool, error)
}

// Service orchestrates the admin-driven election lifecycle. Vote casting
// lives in the ballot ledger; this service never touches tallies.
type Service struct {
	store  Store
	auditp *audit.Publisher
	logger *slog.Logger
}

func NewService(store Store, auditp *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, auditp: auditp, logger: logger}
}

// CreateParams carries boundary-validated election creation input.
type CreateParams struct {
	Title          string
	Description    string
	Type           Type
	StartDate      time.Time
	EndDate        time.Time
	AllowedRegions []string
	Constituency   string
}

// Create registers a new election in scheduled state.
func (s *Service) Create(ctx context.Context, p CreateParams) (*Election, error) {
	e, err := NewElection(uuid.NewString(), p.Title, p.Type, p.StartDate, p.EndDate, p.AllowedRegions, p.Constituency, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	e.Description = p.Description

	if err := s.store.CreateElection(ctx, e); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create election")
	}

	s.auditp.Emit(ctx, audit.Event{
		Action:     audit.ActionElectionCreated,
		ElectionID: e.ID,
		Details:    fmt.Sprintf("type=%s title=%q", e.Type, e.Title),
	})
	s.logger.InfoContext(ctx, "election created",
		"request_id", requestcontext.RequestID(ctx),
		"election_id", e.ID,
		"type", string(e.Type),
	)
	return e, nil
}

// Get returns an election by id.
func (s *Service) Get(ctx context.Context, id string) (*Election, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "election id is required")
	}
	e, err := s.store.FindElection(ctx, id)
	if err != nil {
		return nil, wrapElectionErr(err)
	}
	return e, nil
}

// List returns all elections.
func (s *Service) List(ctx context.Context) ([]*Election, error) {
	elections, err := s.store.ListElections(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list elections")
	}
	return elections, nil
}

// Transition applies an admin-driven status change, enforcing the machine:
// scheduled → active → completed, cancelled from scheduled or active. Time
// never advances status; only this action does.
func (s *Service) Transition(ctx context.Context, id string, next Status) (*Election, error) {
	switch next {
	case StatusActive, StatusCompleted, StatusCancelled:
	default:
		return nil, dErrors.Newf(dErrors.CodeValidation, "invalid target status %q", next)
	}

	now := requestcontext.Now(ctx)
	var prev Status
	e, err := s.store.ExecuteElection(ctx, id,
		func(e *Election) error {
			prev = e.Status
			if err := e.CanTransition(next); err != nil {
				return dErrors.Newf(dErrors.CodeConflict, "cannot transition election from %s to %s", e.Status, next)
			}
			return nil
		},
		func(e *Election) {
			e.ApplyTransition(next, now)
		},
	)
	if err != nil {
		return nil, wrapElectionErr(err)
	}

	s.auditp.Emit(ctx, audit.Event{
		Action:     audit.ActionElectionStatusChanged,
		ElectionID: e.ID,
		Details:    fmt.Sprintf("from=%s to=%s", prev, next),
	})
	return e, nil
}

// ApproveResults sets the results-approval flag. Only legal once the
// election completed or its end date passed.
func (s *Service) ApproveResults(ctx context.Context, id string) (*Election, error) {
	now := requestcontext.Now(ctx)
	e, err := s.store.ExecuteElection(ctx, id,
		func(e *Election) error {
			if e.ResultsApproved {
				return dErrors.New(dErrors.CodeConflict, "results are already approved")
			}
			if err := e.CanApproveResults(now); err != nil {
				return dErrors.New(dErrors.CodeConflict, "results cannot be approved before the election has ended")
			}
			return nil
		},
		func(e *Election) {
			e.ApplyResultsApproval(now)
		},
	)
	if err != nil {
		return nil, wrapElectionErr(err)
	}

	s.auditp.Emit(ctx, audit.Event{
		Action:     audit.ActionResultsApproved,
		ElectionID: e.ID,
	})
	return e, nil
}

// CandidateParams carries boundary-validated candidate creation input.
type CandidateParams struct {
	ElectionID string
	Name       string
	Party      string
	Biography  string
	Position   int
}

// AddCandidate registers a candidate on a scheduled election. Candidates
// cannot join once voting has begun.
func (s *Service) AddCandidate(ctx context.Context, p CandidateParams) (*Candidate, error) {
	e, err := s.Get(ctx, p.ElectionID)
	if err != nil {
		return nil, err
	}
	if e.Status != StatusScheduled {
		return nil, dErrors.New(dErrors.CodeConflict, "candidates can only be added to a scheduled election")
	}

	c, err := NewCandidate(uuid.NewString(), p.ElectionID, p.Name, p.Party, p.Biography, p.Position, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.store.CreateCandidate(ctx, c); err != nil {
		return nil, wrapElectionErr(err)
	}

	s.auditp.Emit(ctx, audit.Event{
		Action:     audit.ActionCandidateCreated,
		ElectionID: p.ElectionID,
		TargetID:   c.ID,
	})
	return c, nil
}

// Candidates returns an election's candidates in ballot order.
func (s *Service) Candidates(ctx context.Context, electionID string) ([]*Candidate, error) {
	if _, err := s.Get(ctx, electionID); err != nil {
		return nil, err
	}
	candidates, degraded, err := s.store.CandidatesByElection(ctx, electionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidates")
	}
	if degraded {
		s.logger.WarnContext(ctx, "candidate listing served by degraded scan",
			"request_id", requestcontext.RequestID(ctx),
			"election_id", electionID,
		)
	}
	return candidates, nil
}

func wrapElectionErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "election not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "conflicting election write")
	case dErrors.HasCode(err, dErrors.CodeConflict), dErrors.HasCode(err, dErrors.CodeValidation):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "election store failure")
	}
}
