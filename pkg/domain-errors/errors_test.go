package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	base := New(CodeConflict, "already voted")

	assert.True(t, HasCode(base, CodeConflict))
	assert.False(t, HasCode(base, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeConflict))
	assert.False(t, HasCode(nil, CodeConflict))
}

func TestHasCodeThroughWrapping(t *testing.T) {
	cause := New(CodeNotFound, "election not found")
	wrapped := fmt.Errorf("loading election: %w", cause)

	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.Equal(t, CodeNotFound, CodeOf(wrapped))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeUnavailable, "store unreachable")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeUnavailable, CodeOf(err))
	assert.Contains(t, err.Error(), "store unreachable")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWithReason(t *testing.T) {
	err := New(CodeConflict, "election has ended").WithReason("ended")

	assert.Equal(t, "ended", ReasonOf(err))
	assert.Equal(t, "", ReasonOf(New(CodeConflict, "no reason")))
	assert.Equal(t, "", ReasonOf(errors.New("plain")))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}
