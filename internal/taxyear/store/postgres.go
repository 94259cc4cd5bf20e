package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"taxsync/internal/taxyear/models"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	txcontext "taxsync/pkg/platform/tx"
)

// Postgres persists tax years in the tax_years table. The profile column is
// JSONB; the completeness_score column is written by the validation engine
// and only read here.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, taxYear *models.TaxYear) error {
	profile, err := json.Marshal(taxYear.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO tax_years (id, client_id, year, status, profile, completeness_score, submitted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		taxYear.ID.String(), taxYear.ClientID.String(), taxYear.Year,
		string(taxYear.Status), profile, taxYear.CompletenessScore,
		nullTime(taxYear.SubmittedAt), taxYear.CreatedAt, taxYear.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return dErrors.New(dErrors.CodeConflict, "tax year already exists for this client and year")
		}
		return fmt.Errorf("insert tax year: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, taxYearID id.TaxYearID) (*models.TaxYear, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, client_id, year, status, profile, completeness_score, submitted_at, created_at, updated_at
		FROM tax_years
		WHERE id = $1
	`, taxYearID.String())
	return scanTaxYear(row)
}

func (s *Postgres) FindByClientAndYear(ctx context.Context, clientID id.ClientID, year int) (*models.TaxYear, error) {
	row := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id, client_id, year, status, profile, completeness_score, submitted_at, created_at, updated_at
		FROM tax_years
		WHERE client_id = $1 AND year = $2
	`, clientID.String(), year)
	return scanTaxYear(row)
}

func (s *Postgres) Update(ctx context.Context, taxYear *models.TaxYear) error {
	profile, err := json.Marshal(taxYear.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE tax_years
		SET status = $1, profile = $2, submitted_at = $3, updated_at = $4
		WHERE id = $5
	`, string(taxYear.Status), profile, nullTime(taxYear.SubmittedAt), taxYear.UpdatedAt, taxYear.ID.String())
	if err != nil {
		return fmt.Errorf("update tax year: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update tax year: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) ListByClient(ctx context.Context, clientID id.ClientID) ([]*models.TaxYear, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, client_id, year, status, profile, completeness_score, submitted_at, created_at, updated_at
		FROM tax_years
		WHERE client_id = $1
		ORDER BY year DESC
	`, clientID.String())
	if err != nil {
		return nil, fmt.Errorf("list tax years: %w", err)
	}
	defer rows.Close()

	var taxYears []*models.TaxYear
	for rows.Next() {
		taxYear, err := scanTaxYear(rows)
		if err != nil {
			return nil, err
		}
		taxYears = append(taxYears, taxYear)
	}
	return taxYears, rows.Err()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaxYear(row rowScanner) (*models.TaxYear, error) {
	var (
		taxYear     models.TaxYear
		idRaw       string
		clientIDRaw string
		status      string
		profileRaw  []byte
		submittedAt sql.NullTime
	)
	err := row.Scan(&idRaw, &clientIDRaw, &taxYear.Year, &status, &profileRaw,
		&taxYear.CompletenessScore, &submittedAt, &taxYear.CreatedAt, &taxYear.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan tax year: %w", err)
	}
	taxYear.ID, err = id.ParseTaxYearID(idRaw)
	if err != nil {
		return nil, err
	}
	taxYear.ClientID, err = id.ParseClientID(clientIDRaw)
	if err != nil {
		return nil, err
	}
	taxYear.Status = models.Status(status)
	if len(profileRaw) > 0 {
		if err := json.Unmarshal(profileRaw, &taxYear.Profile); err != nil {
			return nil, fmt.Errorf("unmarshal profile: %w", err)
		}
	}
	if taxYear.Profile == nil {
		taxYear.Profile = models.Profile{}
	}
	if submittedAt.Valid {
		taxYear.SubmittedAt = &submittedAt.Time
	}
	return &taxYear, nil
}
