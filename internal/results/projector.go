package results

import (
	"math"
	"sort"

	"ballotbox/internal/election"
)

// CandidateResult is one row of a projected tally.
type CandidateResult struct {
	CandidateID string  `json:"candidateId"`
	Name        string  `json:"name"`
	Party       string  `json:"party,omitempty"`
	VoteCount   int64   `json:"voteCount"`
	Percentage  float64 `json:"percentage"`
}

// Summary is a point-in-time projection of an election's tallies.
type Summary struct {
	ElectionID string            `json:"electionId"`
	Results    []CandidateResult `json:"results"`
	TotalVotes int64             `json:"totalVotes"`
}

// Project folds candidate tallies into a ranked summary. Rows sort by vote
// count descending; equal counts fall back to ballot position, then candidate
// id, so repeated projections of the same tallies are identical.
func Project(electionID string, candidates []*election.Candidate) *Summary {
	var total int64
	for _, c := range candidates {
		total += c.VoteCount
	}

	rows := make([]CandidateResult, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, CandidateResult{
			CandidateID: c.ID,
			Name:        c.Name,
			Party:       c.Party,
			VoteCount:   c.VoteCount,
			Percentage:  percentage(c.VoteCount, total),
		})
	}

	byPosition := make(map[string]int, len(candidates))
	for _, c := range candidates {
		byPosition[c.ID] = c.Position
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].VoteCount != rows[j].VoteCount {
			return rows[i].VoteCount > rows[j].VoteCount
		}
		pi, pj := byPosition[rows[i].CandidateID], byPosition[rows[j].CandidateID]
		if pi != pj {
			return pi < pj
		}
		return rows[i].CandidateID < rows[j].CandidateID
	})

	return &Summary{ElectionID: electionID, Results: rows, TotalVotes: total}
}

// percentage returns votes/total as a percent rounded to two decimals.
// A zero total yields zero for every row rather than NaN.
func percentage(votes, total int64) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(votes)/float64(total)*10000) / 100
}
