package results_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"ballotbox/internal/election"
	electionstore "ballotbox/internal/election/store"
	"ballotbox/internal/platform/logger"
	"ballotbox/internal/platform/metrics"
	"ballotbox/internal/results"
	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/requestcontext"
)

var sharedMetrics = metrics.New()

// memoryCache is a map-backed Cache for tests.
type memoryCache struct {
	mu        sync.Mutex
	summaries map[string]*results.Summary
	gets      int
	sets      int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{summaries: make(map[string]*results.Summary)}
}

func (c *memoryCache) Get(_ context.Context, electionID string) (*results.Summary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	return c.summaries[electionID], nil
}

func (c *memoryCache) Set(_ context.Context, summary *results.Summary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.summaries[summary.ElectionID] = summary
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, electionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.summaries, electionID)
	return nil
}

type ResultsServiceSuite struct {
	suite.Suite
	elections *electionstore.InMemoryStore
	cache     *memoryCache
	service   *results.Service

	now time.Time
}

func TestResultsServiceSuite(t *testing.T) {
	suite.Run(t, new(ResultsServiceSuite))
}

func (s *ResultsServiceSuite) SetupTest() {
	s.elections = electionstore.NewMemory()
	s.cache = newMemoryCache()
	s.service = results.NewService(s.elections, s.cache, sharedMetrics, logger.New())
	s.now = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
}

func (s *ResultsServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *ResultsServiceSuite) adminCtx() context.Context {
	return requestcontext.WithRole(s.ctx(), "admin")
}

func (s *ResultsServiceSuite) seedElection(status election.Status, endOffset time.Duration, approved bool) *election.Election {
	e, err := election.NewElection("election-1", "General", election.TypeNational,
		s.now.Add(-24*time.Hour), s.now.Add(endOffset), nil, "", s.now.Add(-48*time.Hour))
	s.Require().NoError(err)
	e.Status = status
	e.ResultsApproved = approved
	s.Require().NoError(s.elections.CreateElection(context.Background(), e))
	return e
}

func (s *ResultsServiceSuite) seedCandidate(id string, position int, votes int64) {
	c, err := election.NewCandidate(id, "election-1", "Candidate "+id, "", "", position, s.now)
	s.Require().NoError(err)
	c.VoteCount = votes
	s.Require().NoError(s.elections.CreateCandidate(context.Background(), c))
}

func (s *ResultsServiceSuite) TestApprovedResultsVisible() {
	s.seedElection(election.StatusCompleted, -time.Hour, true)
	s.seedCandidate("cand-a", 0, 3)
	s.seedCandidate("cand-b", 1, 1)

	summary, err := s.service.Results(s.ctx(), "election-1")
	s.Require().NoError(err)
	s.Equal(int64(4), summary.TotalVotes)
	s.Equal("cand-a", summary.Results[0].CandidateID)
	s.Equal(75.00, summary.Results[0].Percentage)
}

func (s *ResultsServiceSuite) TestOpenElectionNotClosed() {
	s.seedElection(election.StatusActive, time.Hour, false)

	_, err := s.service.Results(s.adminCtx(), "election-1")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal(election.ReasonNotClosed, dErrors.ReasonOf(err))
}

func (s *ResultsServiceSuite) TestUnapprovedPendingForVoter() {
	s.seedElection(election.StatusCompleted, -time.Hour, false)

	_, err := s.service.Results(s.ctx(), "election-1")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	s.Equal(election.ReasonPendingApproval, dErrors.ReasonOf(err))
}

func (s *ResultsServiceSuite) TestUnapprovedVisibleToAdmin() {
	s.seedElection(election.StatusCompleted, -time.Hour, false)
	s.seedCandidate("cand-a", 0, 2)

	summary, err := s.service.Results(s.adminCtx(), "election-1")
	s.Require().NoError(err)
	s.Equal(int64(2), summary.TotalVotes)
}

func (s *ResultsServiceSuite) TestEndedButNotCompletedVisible() {
	// The time window alone closes an election; status may lag behind.
	s.seedElection(election.StatusActive, -time.Hour, true)
	s.seedCandidate("cand-a", 0, 1)

	_, err := s.service.Results(s.ctx(), "election-1")
	s.NoError(err)
}

func (s *ResultsServiceSuite) TestSecondReadServedFromCache() {
	s.seedElection(election.StatusCompleted, -time.Hour, true)
	s.seedCandidate("cand-a", 0, 3)

	first, err := s.service.Results(s.ctx(), "election-1")
	s.Require().NoError(err)
	s.Equal(1, s.cache.sets)

	second, err := s.service.Results(s.ctx(), "election-1")
	s.Require().NoError(err)
	s.Equal(first, second)
	s.Equal(1, s.cache.sets, "cache hit must not re-project")
}

func (s *ResultsServiceSuite) TestNilCacheProjectsDirectly() {
	s.service = results.NewService(s.elections, nil, sharedMetrics, logger.New())
	s.seedElection(election.StatusCompleted, -time.Hour, true)
	s.seedCandidate("cand-a", 0, 1)

	summary, err := s.service.Results(s.ctx(), "election-1")
	s.Require().NoError(err)
	s.Equal(int64(1), summary.TotalVotes)
}

func (s *ResultsServiceSuite) TestUnknownElection() {
	_, err := s.service.Results(s.ctx(), "election-ghost")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
