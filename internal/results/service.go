package results

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ballotbox/internal/election"
	"ballotbox/internal/platform/metrics"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"
)

// ElectionStore is the slice of the election store the service needs.
type ElectionStore interface {
	FindElection(ctx context.Context, id string) (*election.Election, error)
	CandidatesByElection(ctx context.Context, electionID string) ([]*election.Candidate, bool, error)
}

// Service serves result projections behind the visibility gate: an election
// must be closed, and non-admin callers additionally wait for approval.
type Service struct {
	elections ElectionStore
	cache     Cache
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewService builds the results service. cache may be nil, in which case
// every read projects from the store.
func NewService(elections ElectionStore, cache Cache, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		elections: elections,
		cache:     cache,
		metrics:   m,
		logger:    logger,
		tracer:    otel.Tracer("ballotbox/results"),
	}
}

// Results returns the ranked summary for an election the caller may see.
func (s *Service) Results(ctx context.Context, electionID string) (*Summary, error) {
	ctx, span := s.tracer.Start(ctx, "Results.Project",
		trace.WithAttributes(attribute.String("election.id", electionID)))
	defer span.End()

	if electionID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "election id is required")
	}

	e, err := s.elections.FindElection(ctx, electionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "election not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "election lookup failed")
	}

	if err := election.ValidateForResults(e, requestcontext.Now(ctx), requestcontext.IsAdmin(ctx)); err != nil {
		return nil, err
	}

	// The gate above already passed, so a cached summary is safe to serve to
	// this caller. Cache failures degrade to a store read.
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, electionID)
		if err != nil {
			s.logger.WarnContext(ctx, "results cache read failed",
				"request_id", requestcontext.RequestID(ctx),
				"election_id", electionID,
				"error", err.Error(),
			)
		} else if cached != nil {
			s.metrics.ResultsServed.Inc()
			return cached, nil
		}
	}

	candidates, degraded, err := s.elections.CandidatesByElection(ctx, electionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "candidate listing failed")
	}
	if degraded {
		s.metrics.DegradedQueries.Inc()
		s.logger.WarnContext(ctx, "results served via degraded candidate scan",
			"request_id", requestcontext.RequestID(ctx),
			"election_id", electionID,
		)
	}

	summary := Project(electionID, candidates)

	if s.cache != nil {
		if err := s.cache.Set(ctx, summary); err != nil {
			s.logger.WarnContext(ctx, "results cache write failed",
				"request_id", requestcontext.RequestID(ctx),
				"election_id", electionID,
				"error", err.Error(),
			)
		}
	}

	s.metrics.ResultsServed.Inc()
	return summary, nil
}
