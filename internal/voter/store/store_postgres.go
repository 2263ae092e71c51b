package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"ballotbox/internal/voter"
	"ballotbox/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists voters in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed voter store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const voterColumns = `id, subject, email, is_verified, is_eligible, state, district, ward, constituency, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, v *voter.Voter) error {
	query := `
		INSERT INTO voters (` + voterColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.db.ExecContext(ctx, query,
		v.ID, v.Subject, v.Email, v.IsVerified, v.IsEligible,
		v.Region.State, v.Region.District, v.Region.Ward, v.Region.Constituency,
		v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("voter subject already registered: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create voter: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (*voter.Voter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+voterColumns+` FROM voters WHERE id = $1`, id)
	return scanVoter(row)
}

func (s *PostgresStore) FindBySubject(ctx context.Context, subject string) (*voter.Voter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+voterColumns+` FROM voters WHERE subject = $1`, subject)
	return scanVoter(row)
}

// Execute validates and mutates a voter under SELECT ... FOR UPDATE so the
// administrative verification action cannot race with itself.
func (s *PostgresStore) Execute(ctx context.Context, id string, validate func(*voter.Voter) error, mutate func(*voter.Voter)) (*voter.Voter, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin voter update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `SELECT `+voterColumns+` FROM voters WHERE id = $1 FOR UPDATE`, id)
	v, err := scanVoter(row)
	if err != nil {
		return nil, err
	}
	if err := validate(v); err != nil {
		return nil, err
	}
	mutate(v)

	_, err = tx.ExecContext(ctx, `
		UPDATE voters
		SET email = $2, is_verified = $3, is_eligible = $4,
		    state = $5, district = $6, ward = $7, constituency = $8,
		    updated_at = $9
		WHERE id = $1
	`, v.ID, v.Email, v.IsVerified, v.IsEligible,
		v.Region.State, v.Region.District, v.Region.Ward, v.Region.Constituency,
		v.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update voter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit voter update: %w", err)
	}
	return v, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVoter(row rowScanner) (*voter.Voter, error) {
	var v voter.Voter
	err := row.Scan(
		&v.ID, &v.Subject, &v.Email, &v.IsVerified, &v.IsEligible,
		&v.Region.State, &v.Region.District, &v.Region.Ward, &v.Region.Constituency,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("voter not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan voter: %w", err)
	}
	return &v, nil
}
