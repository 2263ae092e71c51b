package ballot

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint derives the deterministic idempotency key for a
// (subject, election) pair. One-way: the subject cannot be recovered from a
// stored vote record, yet the same voter casting again always maps to the
// same key.
func Fingerprint(subject, electionID string) string {
	sum := sha256.Sum256([]byte(subject + ":" + electionID))
	return hex.EncodeToString(sum[:])
}
