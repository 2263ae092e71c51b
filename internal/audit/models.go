package audit

import "time"

// Actions recorded by the core. The list is closed on purpose: a reader of
// the audit log should never meet an unknown tag.
const (
	ActionVoteCast              = "VOTE_CAST"
	ActionVoterVerified         = "VOTER_VERIFIED"
	ActionElectionCreated       = "ELECTION_CREATED"
	ActionElectionStatusChanged = "ELECTION_STATUS_CHANGED"
	ActionResultsApproved       = "RESULTS_APPROVED"
	ActionCandidateCreated      = "CANDIDATE_CREATED"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
//
// A VOTE_CAST event intentionally never carries the chosen candidate; the
// cast is auditable, the ballot stays secret.
type Event struct {
	Timestamp  time.Time
	Action     string
	Actor      string
	ElectionID string
	TargetID   string
	ClientIP   string
	UserAgent  string
	Details    string
}
