package audit

import (
	"context"
	"time"

	"ballotbox/pkg/requestcontext"
)

// Dropped is notified when the buffer is full and an event is discarded.
// Wired to a metrics counter in main; nil-safe.
type Dropped func()

// Publisher hands administrative audit events to the background worker. The
// send never blocks: a full buffer drops the event and notifies the counter,
// so a slow sink cannot stall an admin action.
//
// The VOTE_CAST entry does not go through here; the ballot ledger appends it
// to the store inside the cast transaction.
type Publisher struct {
	inbox   chan<- Event
	dropped Dropped
}

func NewPublisher(inbox chan<- Event, dropped Dropped) *Publisher {
	return &Publisher{inbox: inbox, dropped: dropped}
}

// Emit stamps missing fields from context and enqueues the event.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Actor == "" {
		event.Actor = requestcontext.Subject(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		if p.dropped != nil {
			p.dropped()
		}
	}
}

// Worker consumes audit events from the channel and persists them.
type Worker struct {
	store Store
	inbox <-chan Event
}

func NewWorker(store Store, inbox <-chan Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

// Run drains the inbox until ctx is cancelled, then flushes whatever is
// already buffered before returning.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) flush() {
	flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			if w.store.Append(flushCtx, event) != nil {
				return
			}
		default:
			return
		}
	}
}
