package results_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballotbox/internal/election"
	"ballotbox/internal/results"
)

func candidate(t *testing.T, id string, position int, votes int64) *election.Candidate {
	t.Helper()
	c, err := election.NewCandidate(id, "election-1", "Candidate "+id, "", "", position, time.Now())
	require.NoError(t, err)
	c.VoteCount = votes
	return c
}

func TestProjectRanksAndPercentages(t *testing.T) {
	candidates := []*election.Candidate{
		candidate(t, "cand-b", 1, 1),
		candidate(t, "cand-a", 0, 3),
		candidate(t, "cand-c", 2, 0),
	}

	summary := results.Project("election-1", candidates)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, int64(4), summary.TotalVotes)

	assert.Equal(t, "cand-a", summary.Results[0].CandidateID)
	assert.Equal(t, 75.00, summary.Results[0].Percentage)
	assert.Equal(t, "cand-b", summary.Results[1].CandidateID)
	assert.Equal(t, 25.00, summary.Results[1].Percentage)
	assert.Equal(t, "cand-c", summary.Results[2].CandidateID)
	assert.Equal(t, 0.00, summary.Results[2].Percentage)
}

func TestProjectZeroVotes(t *testing.T) {
	candidates := []*election.Candidate{
		candidate(t, "cand-a", 0, 0),
		candidate(t, "cand-b", 1, 0),
	}

	summary := results.Project("election-1", candidates)

	assert.Equal(t, int64(0), summary.TotalVotes)
	for _, row := range summary.Results {
		assert.Zero(t, row.Percentage)
	}
}

func TestProjectTieBreak(t *testing.T) {
	// Equal tallies rank by ballot position, then candidate id.
	candidates := []*election.Candidate{
		candidate(t, "cand-z", 2, 5),
		candidate(t, "cand-m", 1, 5),
		candidate(t, "cand-a", 1, 5),
	}

	summary := results.Project("election-1", candidates)

	require.Len(t, summary.Results, 3)
	assert.Equal(t, "cand-a", summary.Results[0].CandidateID)
	assert.Equal(t, "cand-m", summary.Results[1].CandidateID)
	assert.Equal(t, "cand-z", summary.Results[2].CandidateID)
}

func TestProjectRoundsToTwoDecimals(t *testing.T) {
	candidates := []*election.Candidate{
		candidate(t, "cand-a", 0, 1),
		candidate(t, "cand-b", 1, 2),
	}

	summary := results.Project("election-1", candidates)

	assert.Equal(t, 33.33, summary.Results[1].Percentage)
	assert.Equal(t, 66.67, summary.Results[0].Percentage)
}

func TestProjectEmpty(t *testing.T) {
	summary := results.Project("election-1", nil)
	assert.Empty(t, summary.Results)
	assert.Zero(t, summary.TotalVotes)
}
