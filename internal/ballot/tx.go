package ballot

import (
	"context"
	"sync"
)

// StoreTx provides the transactional boundary for the ledger's atomic unit.
// Implementations may wrap a database transaction or, in memory, a coarse
// lock. The ctx passed to fn carries whatever the stores need to join the
// same transaction.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// inMemoryStoreTx serializes atomic units with a coarse lock. Paired with
// the memory stores, whose only fallible write is the duplicate-checked vote
// create, which the ledger runs first.
type inMemoryStoreTx struct {
	mu sync.Mutex
}

// NewInMemoryStoreTx constructs the coarse-lock transaction runner used with
// the in-memory stores.
func NewInMemoryStoreTx() StoreTx {
	return &inMemoryStoreTx{}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
