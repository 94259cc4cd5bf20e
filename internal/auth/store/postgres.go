package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"taxsync/internal/auth/models"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
)

const uniqueViolation = "23505"

// Postgres persists accountants in the accountants table.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, accountant *models.Accountant) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accountants (id, email, name, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		accountant.ID.String(), accountant.Email, accountant.Name,
		accountant.PasswordHash, accountant.CreatedAt, accountant.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
	}
	if err != nil {
		return fmt.Errorf("inserting accountant: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, accountantID id.AccountantID) (*models.Accountant, error) {
	return s.findOne(ctx, `WHERE id = $1`, accountantID.String())
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (*models.Accountant, error) {
	return s.findOne(ctx, `WHERE lower(email) = lower($1)`, email)
}

func (s *Postgres) findOne(ctx context.Context, where string, arg any) (*models.Accountant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at, updated_at
		FROM accountants `+where, arg)

	var (
		accountant models.Accountant
		rawID      string
	)
	err := row.Scan(&rawID, &accountant.Email, &accountant.Name,
		&accountant.PasswordHash, &accountant.CreatedAt, &accountant.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading accountant: %w", err)
	}
	if accountant.ID, err = id.ParseAccountantID(rawID); err != nil {
		return nil, fmt.Errorf("parsing accountant id: %w", err)
	}
	return &accountant, nil
}
