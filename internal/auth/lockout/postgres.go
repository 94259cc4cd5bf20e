package lockout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Postgres persists lockout records in the auth_lockouts table. Lockouts
// survive restarts and cache flushes, which matters for an abuse control.
// All counting logic lives in the service; this store is pure I/O.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Get(ctx context.Context, email string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT email, failure_count, locked_until, updated_at
		FROM auth_lockouts WHERE email = $1`, email)

	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading lockout record: %w", err)
	}
	return record, nil
}

// RecordFailure upserts with an atomic increment so concurrent failed
// logins cannot skip past the threshold.
func (s *Postgres) RecordFailure(ctx context.Context, email string, now time.Time) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO auth_lockouts (email, failure_count, updated_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (email) DO UPDATE SET
			failure_count = auth_lockouts.failure_count + 1,
			updated_at = $2
		RETURNING email, failure_count, locked_until, updated_at`, email, now)

	record, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("recording auth failure: %w", err)
	}
	return record, nil
}

func (s *Postgres) Lock(ctx context.Context, email string, until time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE auth_lockouts SET locked_until = $2 WHERE email = $1`, email, until)
	if err != nil {
		return fmt.Errorf("locking account: %w", err)
	}
	return nil
}

func (s *Postgres) Clear(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_lockouts WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("clearing lockout record: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		record      Record
		lockedUntil sql.NullTime
	)
	if err := row.Scan(&record.Email, &record.FailureCount, &lockedUntil, &record.UpdatedAt); err != nil {
		return nil, err
	}
	if lockedUntil.Valid {
		record.LockedUntil = &lockedUntil.Time
	}
	return &record, nil
}
