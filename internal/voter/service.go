package voter

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"ballotbox/internal/audit"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/sentinel"
	"ballotbox/pkg/requestcontext"
)

// Store is the persistence surface the service needs. Satisfied by
// internal/voter/store implementations.
type Store interface {
	Create(ctx context.Context, v *Voter) error
	FindByID(ctx context.Context, id string) (*Voter, error)
	FindBySubject(ctx context.Context, subject string) (*Voter, error)
	Execute(ctx context.Context, id string, validate func(*Voter) error, mutate func(*Voter)) (*Voter, error)
}

// Service orchestrates voter registration and administrative verification.
type Service struct {
	voters Store
	auditp *audit.Publisher
	logger *slog.Logger
}

func NewService(voters Store, auditp *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{voters: voters, auditp: auditp, logger: logger}
}

// Register creates a voter for the authenticated subject. New voters start
// unverified and ineligible; only the administrative verification action
// flips the flags.
func (s *Service) Register(ctx context.Context, region Region) (*Voter, error) {
	subject := requestcontext.Subject(ctx)
	if subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "registration requires an authenticated subject")
	}

	v, err := NewVoter(uuid.NewString(), subject, requestcontext.Email(ctx), region, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.voters.Create(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "voter is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register voter")
	}

	s.logger.InfoContext(ctx, "voter registered",
		"request_id", requestcontext.RequestID(ctx),
		"voter_id", v.ID,
	)
	return v, nil
}

// Verify is the administrative action that marks a voter verified and
// eligible. Emits a VOTER_VERIFIED audit event.
func (s *Service) Verify(ctx context.Context, voterID string) (*Voter, error) {
	if voterID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "voter id is required")
	}

	now := requestcontext.Now(ctx)
	v, err := s.voters.Execute(ctx, voterID,
		func(v *Voter) error {
			if err := v.CanVerify(); err != nil {
				return dErrors.New(dErrors.CodeConflict, "voter is already verified")
			}
			return nil
		},
		func(v *Voter) {
			v.ApplyVerification(now)
		},
	)
	if err != nil {
		return nil, wrapVoterErr(err)
	}

	s.auditp.Emit(ctx, audit.Event{
		Action:   audit.ActionVoterVerified,
		TargetID: v.ID,
	})
	return v, nil
}

// Me returns the voter record for the authenticated subject.
func (s *Service) Me(ctx context.Context) (*Voter, error) {
	subject := requestcontext.Subject(ctx)
	if subject == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	v, err := s.voters.FindBySubject(ctx, subject)
	if err != nil {
		return nil, wrapVoterErr(err)
	}
	return v, nil
}

// Get returns a voter by id.
func (s *Service) Get(ctx context.Context, voterID string) (*Voter, error) {
	if voterID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "voter id is required")
	}
	v, err := s.voters.FindByID(ctx, voterID)
	if err != nil {
		return nil, wrapVoterErr(err)
	}
	return v, nil
}

func wrapVoterErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "voter not found")
	case dErrors.HasCode(err, dErrors.CodeConflict):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "voter store failure")
	}
}
