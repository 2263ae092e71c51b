package ballot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("sub-1", "election-1")
	b := Fingerprint("sub-1", "election-1")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestFingerprintVariesPerPair(t *testing.T) {
	base := Fingerprint("sub-1", "election-1")
	assert.NotEqual(t, base, Fingerprint("sub-2", "election-1"))
	assert.NotEqual(t, base, Fingerprint("sub-1", "election-2"))
}

func TestFingerprintDoesNotLeakSubject(t *testing.T) {
	fp := Fingerprint("sub-1", "election-1")
	assert.NotContains(t, fp, "sub-1")
	assert.NotContains(t, fp, "election-1")
}
