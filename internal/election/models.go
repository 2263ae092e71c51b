package election

import (
	"strings"
	"time"

	dErrors "ballotbox/pkg/domain-errors"
	platformstrings "ballotbox/pkg/platform/strings"
)

// Type determines which regional eligibility policy applies.
type Type string

const (
	TypeGeneral  Type = "general"
	TypeNational Type = "national"
	TypeState    Type = "state"
	TypeLocal    Type = "local"
)

// Valid reports whether t is a known election type. An empty type is accepted
// and treated as general.
func (t Type) Valid() bool {
	switch t {
	case "", TypeGeneral, TypeNational, TypeState, TypeLocal:
		return true
	}
	return false
}

// Status is the admin-driven election state. Time-based validity is checked
// independently of status (see lifecycle.go); the system never auto-advances
// status on schedule.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// CanTransitionTo enforces the admin-driven machine:
// scheduled → active → completed, with cancelled reachable from scheduled or
// active.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusScheduled:
		return next == StatusActive || next == StatusCancelled
	case StatusActive:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}

// Election is the aggregate for a single election.
//
// Invariants:
//   - StartDate precedes EndDate
//   - TotalVotes is informational only; authoritative counts live on candidates
//   - ResultsApproved may only be set once the election has completed or its
//     end date has passed
type Election struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Type            Type      `json:"type"`
	Status          Status    `json:"status"`
	StartDate       time.Time `json:"startDate"`
	EndDate         time.Time `json:"endDate"`
	AllowedRegions  []string  `json:"allowedRegions,omitempty"`
	Constituency    string    `json:"constituency,omitempty"`
	ResultsApproved bool      `json:"resultsApproved"`
	TotalVotes      int64     `json:"totalVotes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// NewElection builds a scheduled election after boundary validation.
func NewElection(id, title string, typ Type, start, end time.Time, allowedRegions []string, constituency string, now time.Time) (*Election, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "election title is required")
	}
	if !typ.Valid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown election type %q", typ)
	}
	if typ == "" {
		typ = TypeGeneral
	}
	if start.IsZero() || end.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "election start and end dates are required")
	}
	if !start.Before(end) {
		return nil, dErrors.New(dErrors.CodeValidation, "election start date must precede end date")
	}
	return &Election{
		ID:             id,
		Title:          title,
		Type:           typ,
		Status:         StatusScheduled,
		StartDate:      start,
		EndDate:        end,
		AllowedRegions: platformstrings.DedupeAndTrim(allowedRegions),
		Constituency:   constituency,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// HasEnded reports whether the election's time window has closed, regardless
// of status.
func (e *Election) HasEnded(now time.Time) bool {
	return e.EndDate.Before(now)
}

// CanTransition checks the admin-driven status transition.
func (e *Election) CanTransition(next Status) error {
	if !e.Status.CanTransitionTo(next) {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "cannot transition election from %s to %s", e.Status, next)
	}
	return nil
}

// ApplyTransition moves the election to the next status.
// Call CanTransition first to validate.
func (e *Election) ApplyTransition(next Status, now time.Time) {
	e.Status = next
	e.UpdatedAt = now
}

// CanApproveResults checks the approval invariant: results may only be
// approved after the election completed or its end date passed.
func (e *Election) CanApproveResults(now time.Time) error {
	if e.Status != StatusCompleted && !e.HasEnded(now) {
		return dErrors.New(dErrors.CodeInvariantViolation, "results cannot be approved before the election has ended")
	}
	return nil
}

// ApplyResultsApproval sets the approval flag.
// Call CanApproveResults first to validate.
func (e *Election) ApplyResultsApproval(now time.Time) {
	e.ResultsApproved = true
	e.UpdatedAt = now
}

// Candidate belongs to exactly one election. VoteCount is a monotonic tally
// mutated only inside the ballot ledger's atomic unit.
type Candidate struct {
	ID         string    `json:"id"`
	ElectionID string    `json:"electionId"`
	Name       string    `json:"name"`
	Party      string    `json:"party,omitempty"`
	Biography  string    `json:"biography,omitempty"`
	Position   int       `json:"position"`
	VoteCount  int64     `json:"voteCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewCandidate builds a candidate after boundary validation.
func NewCandidate(id, electionID, name, party, biography string, position int, now time.Time) (*Candidate, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "candidate name is required")
	}
	if electionID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "candidate election id is required")
	}
	if position < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "candidate position must not be negative")
	}
	return &Candidate{
		ID:         id,
		ElectionID: electionID,
		Name:       strings.TrimSpace(name),
		Party:      party,
		Biography:  biography,
		Position:   position,
		CreatedAt:  now,
	}, nil
}
