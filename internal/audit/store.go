package audit

import "context"

// Store is a durable append-only sink. Entries are never mutated or deleted
// by the core.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByElection(ctx context.Context, electionID string) ([]Event, error)
	ListByActor(ctx context.Context, actor string) ([]Event, error)
}
