package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ballotbox/pkg/requestcontext"
)

func TestEmitStampsFromContext(t *testing.T) {
	inbox := make(chan Event, 1)
	p := NewPublisher(inbox, nil)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	ctx = requestcontext.WithSubject(ctx, "admin-1")
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "curl/8")

	p.Emit(ctx, Event{Action: ActionVoterVerified, TargetID: "voter-1"})

	got := <-inbox
	assert.Equal(t, now, got.Timestamp)
	assert.Equal(t, "admin-1", got.Actor)
	assert.Equal(t, "203.0.113.9", got.ClientIP)
	assert.Equal(t, "curl/8", got.UserAgent)
	assert.Equal(t, ActionVoterVerified, got.Action)
}

func TestEmitDropsOnFullBuffer(t *testing.T) {
	inbox := make(chan Event, 1)
	dropped := 0
	p := NewPublisher(inbox, func() { dropped++ })

	ctx := context.Background()
	p.Emit(ctx, Event{Action: ActionElectionCreated})
	p.Emit(ctx, Event{Action: ActionElectionCreated})

	assert.Equal(t, 1, dropped)
	assert.Len(t, inbox, 1)
}

func TestWorkerPersistsAndFlushesOnCancel(t *testing.T) {
	inbox := make(chan Event, 8)
	store := NewMemoryStore()
	w := NewWorker(store, inbox)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	inbox <- Event{Action: ActionElectionCreated, ElectionID: "e1"}

	require.Eventually(t, func() bool {
		return len(store.All()) == 1
	}, time.Second, 5*time.Millisecond)

	// Events still buffered at shutdown must be flushed.
	inbox <- Event{Action: ActionResultsApproved, ElectionID: "e1"}
	cancel()
	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, store.All(), 2)
}
