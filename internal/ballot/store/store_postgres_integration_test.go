//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ballotbox/internal/ballot"
	ballotstore "ballotbox/internal/ballot/store"
	"ballotbox/internal/election"
	electionstore "ballotbox/internal/election/store"
	"ballotbox/pkg/platform/sentinel"
	txcontext "ballotbox/pkg/platform/tx"
	"ballotbox/pkg/testutil/containers"
)

type PostgresBallotSuite struct {
	suite.Suite
	postgres  *containers.PostgresContainer
	votes     *ballotstore.PostgresVoteStore
	history   *ballotstore.PostgresHistoryStore
	elections *electionstore.PostgresStore
}

func TestPostgresBallotSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresBallotSuite))
}

func (s *PostgresBallotSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.votes = ballotstore.NewPostgresVotes(s.postgres.DB)
	s.history = ballotstore.NewPostgresHistory(s.postgres.DB)
	s.elections = electionstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresBallotSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresBallotSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(),
		"votes", "voting_history", "candidates", "elections")
	s.Require().NoError(err)
}

func (s *PostgresBallotSuite) seedElection(id string) {
	now := time.Now().UTC()
	e, err := election.NewElection(id, "Election "+id, election.TypeNational,
		now.Add(-time.Hour), now.Add(time.Hour), nil, "", now)
	s.Require().NoError(err)
	s.Require().NoError(s.elections.CreateElection(context.Background(), e))
}

func (s *PostgresBallotSuite) seedCandidate(id, electionID string) {
	c, err := election.NewCandidate(id, electionID, "Candidate "+id, "", "", 0, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.elections.CreateCandidate(context.Background(), c))
}

func (s *PostgresBallotSuite) vote(subject, electionID string) *ballot.Vote {
	return &ballot.Vote{
		Fingerprint: ballot.Fingerprint(subject, electionID),
		ElectionID:  electionID,
		CastAt:      time.Now().UTC(),
		Verified:    true,
	}
}

// TestConcurrentDuplicateCreate verifies the primary-key race: many inserts
// at one fingerprint resolve to exactly one stored record.
func (s *PostgresBallotSuite) TestConcurrentDuplicateCreate() {
	ctx := context.Background()
	s.seedElection("election-1")

	const goroutines = 50
	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.votes.Create(ctx, s.vote("sub-1", "election-1"))
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one insert should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load())

	count, err := s.votes.CountByElection(ctx, "election-1")
	s.Require().NoError(err)
	s.Equal(int64(1), count)
}

// TestTransactionRollsBackAllWrites runs the cast unit's write set inside one
// transaction, fails the last write, and verifies nothing persisted.
func (s *PostgresBallotSuite) TestTransactionRollsBackAllWrites() {
	ctx := context.Background()
	s.seedElection("election-1")
	s.seedCandidate("cand-1", "election-1")

	dbTx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	txCtx := txcontext.WithTx(ctx, dbTx)

	s.Require().NoError(s.votes.Create(txCtx, s.vote("sub-1", "election-1")))
	s.Require().NoError(s.elections.IncrementTally(txCtx, "cand-1"))
	s.Require().NoError(s.history.Append(txCtx, ballot.HistoryEntry{
		Subject: "sub-1", ElectionID: "election-1", CastAt: time.Now().UTC(),
	}))
	s.Require().NoError(dbTx.Rollback())

	count, err := s.votes.CountByElection(ctx, "election-1")
	s.Require().NoError(err)
	s.Zero(count)

	c, err := s.elections.FindCandidate(ctx, "cand-1")
	s.Require().NoError(err)
	s.Zero(c.VoteCount)

	entries, _, err := s.history.ListBySubject(ctx, "sub-1")
	s.Require().NoError(err)
	s.Empty(entries)
}

// TestTransactionCommitPersistsUnit is the commit-side twin.
func (s *PostgresBallotSuite) TestTransactionCommitPersistsUnit() {
	ctx := context.Background()
	s.seedElection("election-1")
	s.seedCandidate("cand-1", "election-1")

	dbTx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)
	txCtx := txcontext.WithTx(ctx, dbTx)

	s.Require().NoError(s.votes.Create(txCtx, s.vote("sub-1", "election-1")))
	s.Require().NoError(s.elections.IncrementTally(txCtx, "cand-1"))
	s.Require().NoError(s.elections.IncrementTotalVotes(txCtx, "election-1"))
	s.Require().NoError(dbTx.Commit())

	exists, err := s.votes.Exists(ctx, ballot.Fingerprint("sub-1", "election-1"))
	s.Require().NoError(err)
	s.True(exists)

	c, err := s.elections.FindCandidate(ctx, "cand-1")
	s.Require().NoError(err)
	s.Equal(int64(1), c.VoteCount)
}

// TestHistoryIndexedOrder verifies the indexed query path serves history
// newest first without the degraded flag.
func (s *PostgresBallotSuite) TestHistoryIndexedOrder() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	for i, electionID := range []string{"election-a", "election-b", "election-c"} {
		s.Require().NoError(s.history.Append(ctx, ballot.HistoryEntry{
			Subject:       "sub-1",
			ElectionID:    electionID,
			ElectionTitle: "Election " + electionID,
			CastAt:        base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, degraded, err := s.history.ListBySubject(ctx, "sub-1")
	s.Require().NoError(err)
	s.False(degraded, "indexed path should serve the query")
	s.Require().Len(entries, 3)
	s.Equal("election-c", entries[0].ElectionID)
	s.Equal("election-a", entries[2].ElectionID)
}
