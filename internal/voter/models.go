package voter

import (
	"strings"
	"time"

	dErrors "ballotbox/pkg/domain-errors"
)

// Region holds the optional geographic attributes used by regional
// eligibility checks. All fields may be empty for voters registered without
// region data; the eligibility resolver fails closed when a regional election
// needs an attribute the voter lacks.
type Region struct {
	State        string `json:"state,omitempty"`
	District     string `json:"district,omitempty"`
	Ward         string `json:"ward,omitempty"`
	Constituency string `json:"constituency,omitempty"`
}

// Voter is the aggregate for a registered voter.
//
// Invariants:
//   - Subject is the opaque identity-provider subject, non-empty, immutable
//   - A voter is created unverified and ineligible; only the administrative
//     verification action flips the flags
//   - Voters are never deleted
//
// The voting history lives in a separate append-only log keyed by voter
// (ballot.HistoryStore), not on this record, so casting never contends on the
// voter document.
type Voter struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Email      string    `json:"email,omitempty"`
	IsVerified bool      `json:"isVerified"`
	IsEligible bool      `json:"isEligible"`
	Region     Region    `json:"region"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NewVoter builds an unverified, ineligible voter for a subject.
func NewVoter(id, subject, email string, region Region, now time.Time) (*Voter, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "voter subject is required")
	}
	return &Voter{
		ID:        id,
		Subject:   subject,
		Email:     email,
		Region:    region,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CanVerify checks whether the administrative verification action applies.
func (v *Voter) CanVerify() error {
	if v.IsVerified && v.IsEligible {
		return dErrors.New(dErrors.CodeInvariantViolation, "voter is already verified")
	}
	return nil
}

// ApplyVerification marks the voter verified and eligible.
// Call CanVerify first to validate the transition.
func (v *Voter) ApplyVerification(now time.Time) {
	v.IsVerified = true
	v.IsEligible = true
	v.UpdatedAt = now
}
