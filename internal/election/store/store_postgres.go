package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ballotbox/internal/election"
	"ballotbox/internal/query"
	"ballotbox/pkg/platform/sentinel"
	txcontext "ballotbox/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresStore persists elections and candidates in PostgreSQL. Tally
// increments honor a transaction carried in context so they can join the
// ballot ledger's atomic unit.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed election store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const electionColumns = `id, title, description, type, status, start_date, end_date, allowed_regions, constituency, results_approved, total_votes, created_at, updated_at`

func (s *PostgresStore) CreateElection(ctx context.Context, e *election.Election) error {
	query := `
		INSERT INTO elections (` + electionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Title, e.Description, string(e.Type), string(e.Status),
		e.StartDate, e.EndDate, pq.Array(e.AllowedRegions), e.Constituency,
		e.ResultsApproved, e.TotalVotes, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("election already exists: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create election: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindElection(ctx context.Context, id string) (*election.Election, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+electionColumns+` FROM elections WHERE id = $1`, id)
	return scanElection(row)
}

func (s *PostgresStore) ListElections(ctx context.Context) ([]*election.Election, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+electionColumns+` FROM elections ORDER BY start_date`)
	if err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	defer rows.Close()

	var out []*election.Election
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ExecuteElection(ctx context.Context, id string, validate func(*election.Election) error, mutate func(*election.Election)) (*election.Election, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin election update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `SELECT `+electionColumns+` FROM elections WHERE id = $1 FOR UPDATE`, id)
	e, err := scanElection(row)
	if err != nil {
		return nil, err
	}
	if err := validate(e); err != nil {
		return nil, err
	}
	mutate(e)

	_, err = tx.ExecContext(ctx, `
		UPDATE elections
		SET status = $2, results_approved = $3, updated_at = $4
		WHERE id = $1
	`, e.ID, string(e.Status), e.ResultsApproved, e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update election: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit election update: %w", err)
	}
	return e, nil
}

const candidateColumns = `id, election_id, name, party, biography, position, vote_count, created_at`

func (s *PostgresStore) CreateCandidate(ctx context.Context, c *election.Candidate) error {
	query := `
		INSERT INTO candidates (` + candidateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.ElectionID, c.Name, c.Party, c.Biography, c.Position, c.VoteCount, c.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case uniqueViolation:
				return fmt.Errorf("candidate already exists: %w", sentinel.ErrConflict)
			case "23503": // foreign_key_violation
				return fmt.Errorf("election not found: %w", sentinel.ErrNotFound)
			}
		}
		return fmt.Errorf("create candidate: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindCandidate(ctx context.Context, id string) (*election.Candidate, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	return scanCandidate(row)
}

// pgCandidateSource serves the indexed candidate query; Scan is the degraded
// superset fetch used when the ordered query fails (missing index).
type pgCandidateSource struct {
	store      *PostgresStore
	electionID string
}

func (cs pgCandidateSource) Query(ctx context.Context, _ query.Plan) ([]*election.Candidate, error) {
	rows, err := cs.store.db.QueryContext(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE election_id = $1 ORDER BY position, id`,
		cs.electionID)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()
	return collectCandidates(rows)
}

func (cs pgCandidateSource) Scan(ctx context.Context) ([]*election.Candidate, error) {
	rows, err := cs.store.db.QueryContext(ctx, `SELECT `+candidateColumns+` FROM candidates`)
	if err != nil {
		return nil, fmt.Errorf("scan candidates: %w", err)
	}
	defer rows.Close()
	return collectCandidates(rows)
}

func (s *PostgresStore) CandidatesByElection(ctx context.Context, electionID string) ([]*election.Candidate, bool, error) {
	res, err := query.Execute(ctx, pgCandidateSource{store: s, electionID: electionID},
		query.Plan{Name: "candidates_by_election"},
		func(c *election.Candidate) bool { return c.ElectionID == electionID },
		CandidateOrder,
	)
	if err != nil {
		return nil, false, err
	}
	return res.Items, res.Degraded, nil
}

func (s *PostgresStore) IncrementTally(ctx context.Context, candidateID string) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE candidates SET vote_count = vote_count + 1 WHERE id = $1`, candidateID)
	if err != nil {
		return fmt.Errorf("increment tally: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment tally: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("candidate not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) IncrementTotalVotes(ctx context.Context, electionID string) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE elections SET total_votes = total_votes + 1 WHERE id = $1`, electionID)
	if err != nil {
		return fmt.Errorf("increment total votes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment total votes: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("election not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func scanElection(row rowScanner) (*election.Election, error) {
	var e election.Election
	var typ, status string
	var regions pq.StringArray
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &typ, &status,
		&e.StartDate, &e.EndDate, &regions, &e.Constituency,
		&e.ResultsApproved, &e.TotalVotes, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("election not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan election: %w", err)
	}
	e.Type = election.Type(typ)
	e.Status = election.Status(status)
	e.AllowedRegions = regions
	return &e, nil
}

func scanCandidate(row rowScanner) (*election.Candidate, error) {
	var c election.Candidate
	err := row.Scan(&c.ID, &c.ElectionID, &c.Name, &c.Party, &c.Biography,
		&c.Position, &c.VoteCount, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("candidate not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan candidate: %w", err)
	}
	return &c, nil
}

func collectCandidates(rows *sql.Rows) ([]*election.Candidate, error) {
	var out []*election.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}
