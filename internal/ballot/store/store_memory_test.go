package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ballotbox/internal/ballot"
	"ballotbox/pkg/platform/sentinel"
)

type BallotStoreSuite struct {
	suite.Suite
	votes   *InMemoryVoteStore
	history *InMemoryHistoryStore
	now     time.Time
}

func TestBallotStoreSuite(t *testing.T) {
	suite.Run(t, new(BallotStoreSuite))
}

func (s *BallotStoreSuite) SetupTest() {
	s.votes = NewMemoryVotes()
	s.history = NewMemoryHistory()
	s.now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
}

func (s *BallotStoreSuite) vote(subject, electionID string) *ballot.Vote {
	return &ballot.Vote{
		Fingerprint: ballot.Fingerprint(subject, electionID),
		ElectionID:  electionID,
		CastAt:      s.now,
		Verified:    true,
	}
}

func (s *BallotStoreSuite) TestCreateIsIdempotentPerFingerprint() {
	ctx := context.Background()
	s.Require().NoError(s.votes.Create(ctx, s.vote("sub-1", "election-1")))
	s.Require().ErrorIs(s.votes.Create(ctx, s.vote("sub-1", "election-1")), sentinel.ErrConflict)

	// Same subject, different election is a distinct fingerprint.
	s.Require().NoError(s.votes.Create(ctx, s.vote("sub-1", "election-2")))
}

func (s *BallotStoreSuite) TestExists() {
	ctx := context.Background()
	s.Require().NoError(s.votes.Create(ctx, s.vote("sub-1", "election-1")))

	found, err := s.votes.Exists(ctx, ballot.Fingerprint("sub-1", "election-1"))
	s.Require().NoError(err)
	s.True(found)

	found, err = s.votes.Exists(ctx, ballot.Fingerprint("sub-2", "election-1"))
	s.Require().NoError(err)
	s.False(found)
}

func (s *BallotStoreSuite) TestCountByElection() {
	ctx := context.Background()
	s.Require().NoError(s.votes.Create(ctx, s.vote("sub-1", "election-1")))
	s.Require().NoError(s.votes.Create(ctx, s.vote("sub-2", "election-1")))
	s.Require().NoError(s.votes.Create(ctx, s.vote("sub-3", "election-2")))

	count, err := s.votes.CountByElection(ctx, "election-1")
	s.Require().NoError(err)
	s.Equal(int64(2), count)

	count, err = s.votes.CountByElection(ctx, "election-ghost")
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *BallotStoreSuite) TestHistoryNewestFirstDegraded() {
	ctx := context.Background()
	for i, electionID := range []string{"election-a", "election-b", "election-c"} {
		s.Require().NoError(s.history.Append(ctx, ballot.HistoryEntry{
			Subject:       "sub-1",
			ElectionID:    electionID,
			ElectionTitle: "Election " + electionID,
			CastAt:        s.now.Add(time.Duration(i) * time.Minute),
		}))
	}
	s.Require().NoError(s.history.Append(ctx, ballot.HistoryEntry{
		Subject:    "sub-2",
		ElectionID: "election-a",
		CastAt:     s.now,
	}))

	entries, degraded, err := s.history.ListBySubject(ctx, "sub-1")
	s.Require().NoError(err)
	s.True(degraded, "memory store has no indexed path")
	s.Require().Len(entries, 3)
	s.Equal("election-c", entries[0].ElectionID)
	s.Equal("election-b", entries[1].ElectionID)
	s.Equal("election-a", entries[2].ElectionID)
}

func (s *BallotStoreSuite) TestHistoryTieBreaksOnElectionID() {
	ctx := context.Background()
	// Two casts stamped at the same instant keep a stable listing order.
	for _, electionID := range []string{"election-z", "election-a"} {
		s.Require().NoError(s.history.Append(ctx, ballot.HistoryEntry{
			Subject:    "sub-1",
			ElectionID: electionID,
			CastAt:     s.now,
		}))
	}

	entries, _, err := s.history.ListBySubject(ctx, "sub-1")
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("election-a", entries[0].ElectionID)
	s.Equal("election-z", entries[1].ElectionID)
}

func (s *BallotStoreSuite) TestHistoryEmptySubject() {
	entries, _, err := s.history.ListBySubject(context.Background(), "sub-ghost")
	s.Require().NoError(err)
	s.Empty(entries)
}
