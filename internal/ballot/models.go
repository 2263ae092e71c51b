package ballot

import "time"

// Vote is the idempotency record proving a voter has cast in an election.
// It is keyed by the deterministic fingerprint of (subject, election), so
// the store itself rejects a second creation for the same pair.
//
// The record deliberately stores no candidate: "who voted" and "what the
// tally says" are kept unlinkable beyond what counting requires.
type Vote struct {
	Fingerprint string    `json:"fingerprint"`
	ElectionID  string    `json:"electionId"`
	CastAt      time.Time `json:"castAt"`
	Verified    bool      `json:"verified"`
}

// HistoryEntry is one line of a voter's append-only voting history, kept in
// a secondary log keyed by subject rather than on the voter record.
type HistoryEntry struct {
	Subject       string    `json:"-"`
	ElectionID    string    `json:"electionId"`
	ElectionTitle string    `json:"electionTitle"`
	CastAt        time.Time `json:"castAt"`
}

// Receipt is the public result of a successful cast.
type Receipt struct {
	CastAt time.Time `json:"castAt"`
}
