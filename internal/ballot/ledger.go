package ballot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ballotbox/internal/audit"
	"ballotbox/internal/election"
	"ballotbox/internal/platform/metrics"
	"ballotbox/internal/voter"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"
)

// Stable reasons for cast rejections, surfaced alongside error codes so
// callers can tell "not yet eligible" from "already voted" from "closed".
const (
	ReasonNotRegistered = "not-registered"
	ReasonNotVerified   = "not-verified"
	ReasonIneligible    = "ineligible"
	ReasonAdminBarred   = "admin-cannot-vote"
	ReasonAlreadyVoted  = "already-voted"
	ReasonWrongElection = "candidate-election-mismatch"
)

// VoterStore is the slice of the voter store the ledger needs.
type VoterStore interface {
	FindBySubject(ctx context.Context, subject string) (*voter.Voter, error)
}

// ElectionStore is the slice of the election store the ledger needs.
type ElectionStore interface {
	FindElection(ctx context.Context, id string) (*election.Election, error)
	FindCandidate(ctx context.Context, id string) (*election.Candidate, error)
	IncrementTally(ctx context.Context, candidateID string) error
	IncrementTotalVotes(ctx context.Context, electionID string) error
}

// Ledger owns the invariant "at most one counted vote per (voter, election)".
// All tally mutations in the system happen inside its atomic unit.
type Ledger struct {
	voters     VoterStore
	elections  ElectionStore
	votes      VoteStore
	history    HistoryStore
	auditStore audit.Store
	tx         StoreTx
	metrics    *metrics.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

// VoteStore and HistoryStore mirror internal/ballot/store interfaces; they
// are redeclared here so the ledger depends only on what it uses.
type VoteStore interface {
	Create(ctx context.Context, v *Vote) error
	Exists(ctx context.Context, fingerprint string) (bool, error)
}

type HistoryStore interface {
	Append(ctx context.Context, entry HistoryEntry) error
	ListBySubject(ctx context.Context, subject string) ([]HistoryEntry, bool, error)
}

func NewLedger(
	voters VoterStore,
	elections ElectionStore,
	votes VoteStore,
	history HistoryStore,
	auditStore audit.Store,
	tx StoreTx,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Ledger {
	return &Ledger{
		voters:     voters,
		elections:  elections,
		votes:      votes,
		history:    history,
		auditStore: auditStore,
		tx:         tx,
		metrics:    m,
		logger:     logger,
		tracer:     otel.Tracer("ballotbox/ballot"),
	}
}

// Cast records one ballot for the authenticated subject, exactly once.
//
// Preconditions run first and are side-effect free: lifecycle window,
// eligibility, candidate/election agreement, and the admin bar. The four
// writes (idempotency record, tally increment, history append, audit entry)
// then apply as a single all-or-nothing unit. The ledger never retries
// internally; a transient failure is surfaced for the transport to retry
// without risk of double side effects.
func (l *Ledger) Cast(ctx context.Context, electionID, candidateID string) (*Receipt, error) {
	ctx, span := l.tracer.Start(ctx, "Ledger.Cast",
		trace.WithAttributes(attribute.String("election.id", electionID)))
	defer span.End()

	start := time.Now()
	subject := requestcontext.Subject(ctx)
	if subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "casting requires an authenticated subject")
	}
	if electionID == "" || candidateID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "election id and candidate id are required")
	}

	// Administrators are categorically barred from casting. The check reads
	// the role claim from the verified token; when the provider supplied no
	// role claim the cast proceeds, so provider degradation never blocks a
	// voter.
	if requestcontext.IsAdmin(ctx) {
		l.reject(ReasonAdminBarred)
		return nil, dErrors.New(dErrors.CodeForbidden, "administrators cannot cast ballots").WithReason(ReasonAdminBarred)
	}

	v, err := l.voters.FindBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			l.reject(ReasonNotRegistered)
			return nil, dErrors.New(dErrors.CodeNotFound, "voter is not registered").WithReason(ReasonNotRegistered)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "voter lookup failed")
	}

	e, err := l.elections.FindElection(ctx, electionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "election not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "election lookup failed")
	}

	now := requestcontext.Now(ctx)
	if err := election.ValidateForCasting(e, now); err != nil {
		l.reject(dErrors.ReasonOf(err))
		return nil, err
	}

	if !v.IsVerified || !v.IsEligible {
		l.reject(ReasonNotVerified)
		return nil, dErrors.New(dErrors.CodeForbidden, "voter is not verified").WithReason(ReasonNotVerified)
	}
	if !voter.Eligible(v, e) {
		l.reject(ReasonIneligible)
		return nil, dErrors.New(dErrors.CodeForbidden, "voter is not eligible for this election").WithReason(ReasonIneligible)
	}

	c, err := l.elections.FindCandidate(ctx, candidateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "candidate not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "candidate lookup failed")
	}
	if c.ElectionID != e.ID {
		l.reject(ReasonWrongElection)
		return nil, dErrors.New(dErrors.CodeValidation, "candidate does not belong to this election").WithReason(ReasonWrongElection)
	}

	record := &Vote{
		Fingerprint: Fingerprint(subject, e.ID),
		ElectionID:  e.ID,
		CastAt:      now,
		Verified:    true,
	}

	err = l.tx.RunInTx(ctx, func(txCtx context.Context) error {
		// The create goes first: a duplicate fingerprint aborts the unit
		// before any side effect, which is what makes two racing casts
		// resolve to exactly one counted vote.
		if err := l.votes.Create(txCtx, record); err != nil {
			return err
		}
		if err := l.elections.IncrementTally(txCtx, c.ID); err != nil {
			return err
		}
		if err := l.elections.IncrementTotalVotes(txCtx, e.ID); err != nil {
			return err
		}
		if err := l.history.Append(txCtx, HistoryEntry{
			Subject:       subject,
			ElectionID:    e.ID,
			ElectionTitle: e.Title,
			CastAt:        now,
		}); err != nil {
			return err
		}
		// The audit entry names the actor and election but never the
		// candidate.
		return l.auditStore.Append(txCtx, audit.Event{
			Timestamp:  now,
			Action:     audit.ActionVoteCast,
			Actor:      subject,
			ElectionID: e.ID,
			ClientIP:   requestcontext.ClientIP(ctx),
			UserAgent:  requestcontext.UserAgent(ctx),
		})
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			l.metrics.DuplicateVotes.Inc()
			return nil, dErrors.New(dErrors.CodeConflict, "voter has already voted in this election").WithReason(ReasonAlreadyVoted)
		}
		l.logger.ErrorContext(ctx, "cast transaction failed",
			"request_id", requestcontext.RequestID(ctx),
			"election_id", e.ID,
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "cast could not be completed")
	}

	l.metrics.VotesCast.Inc()
	l.metrics.CastDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	l.logger.InfoContext(ctx, "ballot cast",
		"request_id", requestcontext.RequestID(ctx),
		"election_id", e.ID,
	)
	return &Receipt{CastAt: now}, nil
}

// HasVoted reports whether the authenticated subject holds a vote record for
// the election. Fingerprint existence only; it reveals nothing about the
// chosen candidate.
func (l *Ledger) HasVoted(ctx context.Context, electionID string) (bool, error) {
	subject := requestcontext.Subject(ctx)
	if subject == "" {
		return false, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if electionID == "" {
		return false, dErrors.New(dErrors.CodeBadRequest, "election id is required")
	}
	voted, err := l.votes.Exists(ctx, Fingerprint(subject, electionID))
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeUnavailable, "vote lookup failed")
	}
	return voted, nil
}

// History returns the authenticated subject's voting history, newest first.
func (l *Ledger) History(ctx context.Context) ([]HistoryEntry, error) {
	subject := requestcontext.Subject(ctx)
	if subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	entries, degraded, err := l.history.ListBySubject(ctx, subject)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "history lookup failed")
	}
	if degraded {
		l.metrics.DegradedQueries.Inc()
	}
	return entries, nil
}

func (l *Ledger) reject(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	l.metrics.VotesRejected.WithLabelValues(reason).Inc()
}
