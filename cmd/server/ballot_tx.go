package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "ballotbox/pkg/domain-errors"
	"ballotbox/pkg/platform/tx"
)

const defaultCastTxTimeout = 5 * time.Second

// ballotPostgresTx runs the cast unit inside one database transaction. The
// *sql.Tx travels in context; every tx-aware store picks it up, so all four
// cast writes commit or roll back together.
type ballotPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newBallotPostgresTx(db *sql.DB, timeout time.Duration) *ballotPostgresTx {
	return &ballotPostgresTx{db: db, timeout: timeout}
}

func (t *ballotPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultCastTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dbTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	if err := fn(tx.WithTx(ctx, dbTx)); err != nil {
		return err
	}

	return dbTx.Commit()
}
