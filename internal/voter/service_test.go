package voter_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ballotbox/internal/audit"
	"ballotbox/internal/platform/logger"
	"ballotbox/internal/voter"
	voterstore "ballotbox/internal/voter/store"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/requestcontext"
)

type VoterServiceSuite struct {
	suite.Suite
	store   *voterstore.InMemoryStore
	inbox   chan audit.Event
	service *voter.Service

	now time.Time
}

func TestVoterServiceSuite(t *testing.T) {
	suite.Run(t, new(VoterServiceSuite))
}

func (s *VoterServiceSuite) SetupTest() {
	s.store = voterstore.NewMemory()
	s.inbox = make(chan audit.Event, 16)
	s.service = voter.NewService(s.store, audit.NewPublisher(s.inbox, nil), logger.New())
	s.now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
}

func (s *VoterServiceSuite) ctxFor(subject string) context.Context {
	ctx := requestcontext.WithSubject(context.Background(), subject)
	ctx = requestcontext.WithEmail(ctx, subject+"@example.com")
	return requestcontext.WithTime(ctx, s.now)
}

func (s *VoterServiceSuite) TestRegister() {
	v, err := s.service.Register(s.ctxFor("sub-1"), voter.Region{State: "CA", District: "12"})
	s.Require().NoError(err)

	s.NotEmpty(v.ID)
	s.Equal("sub-1", v.Subject)
	s.Equal("sub-1@example.com", v.Email)
	s.False(v.IsVerified)
	s.False(v.IsEligible)
	s.Equal("CA", v.Region.State)
}

func (s *VoterServiceSuite) TestRegisterTwiceConflicts() {
	_, err := s.service.Register(s.ctxFor("sub-1"), voter.Region{})
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctxFor("sub-1"), voter.Region{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *VoterServiceSuite) TestRegisterRequiresSubject() {
	_, err := s.service.Register(requestcontext.WithTime(context.Background(), s.now), voter.Region{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *VoterServiceSuite) TestVerify() {
	v, err := s.service.Register(s.ctxFor("sub-1"), voter.Region{})
	s.Require().NoError(err)

	verified, err := s.service.Verify(s.ctxFor("admin-1"), v.ID)
	s.Require().NoError(err)
	s.True(verified.IsVerified)
	s.True(verified.IsEligible)

	select {
	case event := <-s.inbox:
		s.Equal(audit.ActionVoterVerified, event.Action)
		s.Equal(v.ID, event.TargetID)
		s.Equal("admin-1", event.Actor)
	default:
		s.Fail("expected a VOTER_VERIFIED audit event")
	}
}

func (s *VoterServiceSuite) TestVerifyTwiceConflicts() {
	v, err := s.service.Register(s.ctxFor("sub-1"), voter.Region{})
	s.Require().NoError(err)

	_, err = s.service.Verify(s.ctxFor("admin-1"), v.ID)
	s.Require().NoError(err)

	_, err = s.service.Verify(s.ctxFor("admin-1"), v.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *VoterServiceSuite) TestVerifyUnknown() {
	_, err := s.service.Verify(s.ctxFor("admin-1"), "voter-ghost")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *VoterServiceSuite) TestMe() {
	registered, err := s.service.Register(s.ctxFor("sub-1"), voter.Region{})
	s.Require().NoError(err)

	me, err := s.service.Me(s.ctxFor("sub-1"))
	s.Require().NoError(err)
	s.Equal(registered.ID, me.ID)

	_, err = s.service.Me(s.ctxFor("sub-unknown"))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
