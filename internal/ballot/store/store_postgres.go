package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ballotbox/internal/ballot"
	"ballotbox/internal/query"
	"ballotbox/pkg/platform/sentinel"
	txcontext "ballotbox/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresVoteStore persists idempotency records in PostgreSQL. All writes
// honor a transaction carried in context: the duplicate-key failure inside
// the cast transaction is what makes the ledger exactly-once under races.
type PostgresVoteStore struct {
	db *sql.DB
}

// NewPostgresVotes constructs a PostgreSQL-backed vote store.
func NewPostgresVotes(db *sql.DB) *PostgresVoteStore {
	return &PostgresVoteStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type dbQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresVoteStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresVoteStore) querier(ctx context.Context) dbQuerier {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresVoteStore) Create(ctx context.Context, v *ballot.Vote) error {
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO votes (fingerprint, election_id, cast_at, verified)
		VALUES ($1, $2, $3, $4)
	`, v.Fingerprint, v.ElectionID, v.CastAt, v.Verified)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("vote record already exists: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create vote record: %w", err)
	}
	return nil
}

func (s *PostgresVoteStore) Exists(ctx context.Context, fingerprint string) (bool, error) {
	var exists bool
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM votes WHERE fingerprint = $1)`, fingerprint).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check vote record: %w", err)
	}
	return exists, nil
}

func (s *PostgresVoteStore) CountByElection(ctx context.Context, electionID string) (int64, error) {
	var n int64
	err := s.querier(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE election_id = $1`, electionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count vote records: %w", err)
	}
	return n, nil
}

// PostgresHistoryStore persists the voting-history log in PostgreSQL.
type PostgresHistoryStore struct {
	db *sql.DB
}

// NewPostgresHistory constructs a PostgreSQL-backed history store.
func NewPostgresHistory(db *sql.DB) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

func (s *PostgresHistoryStore) Append(ctx context.Context, entry ballot.HistoryEntry) error {
	execer := dbExecutor(s.db)
	if tx, ok := txcontext.From(ctx); ok {
		execer = tx
	}
	_, err := execer.ExecContext(ctx, `
		INSERT INTO voting_history (subject, election_id, election_title, cast_at)
		VALUES ($1, $2, $3, $4)
	`, entry.Subject, entry.ElectionID, entry.ElectionTitle, entry.CastAt)
	if err != nil {
		return fmt.Errorf("append history entry: %w", err)
	}
	return nil
}

type pgHistorySource struct {
	store   *PostgresHistoryStore
	subject string
}

const historyColumns = `subject, election_id, election_title, cast_at`

func (hs pgHistorySource) Query(ctx context.Context, _ query.Plan) ([]ballot.HistoryEntry, error) {
	rows, err := hs.store.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM voting_history WHERE subject = $1 ORDER BY cast_at DESC, election_id`,
		hs.subject)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	return collectHistory(rows)
}

func (hs pgHistorySource) Scan(ctx context.Context) ([]ballot.HistoryEntry, error) {
	rows, err := hs.store.db.QueryContext(ctx, `SELECT `+historyColumns+` FROM voting_history`)
	if err != nil {
		return nil, fmt.Errorf("scan history: %w", err)
	}
	defer rows.Close()
	return collectHistory(rows)
}

func (s *PostgresHistoryStore) ListBySubject(ctx context.Context, subject string) ([]ballot.HistoryEntry, bool, error) {
	res, err := query.Execute(ctx, pgHistorySource{store: s, subject: subject},
		query.Plan{Name: "history_by_subject"},
		func(e ballot.HistoryEntry) bool { return e.Subject == subject },
		HistoryOrder,
	)
	if err != nil {
		return nil, false, err
	}
	return res.Items, res.Degraded, nil
}

func collectHistory(rows *sql.Rows) ([]ballot.HistoryEntry, error) {
	var out []ballot.HistoryEntry
	for rows.Next() {
		var e ballot.HistoryEntry
		if err := rows.Scan(&e.Subject, &e.ElectionID, &e.ElectionTitle, &e.CastAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
