package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"taxsync/internal/validation"
	id "taxsync/pkg/domain"
	txcontext "taxsync/pkg/platform/tx"
)

// PostgresStore backs the validation ports with the tax_years, clients,
// documents, and validations tables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) LoadTaxYearContext(ctx context.Context, taxYearID id.TaxYearID) (*validation.TaxYearContext, error) {
	var (
		clientIDRaw string
		year        int
		province    string
		profileRaw  []byte
	)
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT ty.client_id, ty.year, c.province, ty.profile
		FROM tax_years ty
		JOIN clients c ON c.id = ty.client_id
		WHERE ty.id = $1
	`, taxYearID.String()).Scan(&clientIDRaw, &year, &province, &profileRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load tax year: %w", err)
	}

	clientID, err := id.ParseClientID(clientIDRaw)
	if err != nil {
		return nil, fmt.Errorf("parse client id: %w", err)
	}

	var profile validation.Profile
	if len(profileRaw) > 0 {
		if err := json.Unmarshal(profileRaw, &profile); err != nil {
			return nil, fmt.Errorf("unmarshal profile: %w", err)
		}
	}

	documents, err := s.loadDocuments(ctx, taxYearID)
	if err != nil {
		return nil, err
	}

	return &validation.TaxYearContext{
		TaxYearID: taxYearID,
		ClientID:  clientID,
		Year:      year,
		Client:    validation.ClientContext{ID: clientID, Province: province},
		Profile:   profile,
		Documents: documents,
	}, nil
}

func (s *PostgresStore) LoadPreviousYearDocuments(ctx context.Context, clientID id.ClientID, year int) ([]validation.DocumentSnapshot, error) {
	var taxYearIDRaw string
	err := s.execer(ctx).QueryRowContext(ctx, `
		SELECT id FROM tax_years WHERE client_id = $1 AND year = $2
	`, clientID.String(), year).Scan(&taxYearIDRaw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load previous tax year: %w", err)
	}
	taxYearID, err := id.ParseTaxYearID(taxYearIDRaw)
	if err != nil {
		return nil, fmt.Errorf("parse tax year id: %w", err)
	}
	return s.loadDocuments(ctx, taxYearID)
}

func (s *PostgresStore) loadDocuments(ctx context.Context, taxYearID id.TaxYearID) ([]validation.DocumentSnapshot, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT id, doc_type, COALESCE(doc_subtype, ''), extracted_data
		FROM documents
		WHERE tax_year_id = $1
		ORDER BY uploaded_at
	`, taxYearID.String())
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	defer rows.Close()

	var documents []validation.DocumentSnapshot
	for rows.Next() {
		var (
			docIDRaw     string
			doc          validation.DocumentSnapshot
			extractedRaw []byte
		)
		if err := rows.Scan(&docIDRaw, &doc.DocType, &doc.DocSubtype, &extractedRaw); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.ID, err = id.ParseDocumentID(docIDRaw)
		if err != nil {
			return nil, fmt.Errorf("parse document id: %w", err)
		}
		if len(extractedRaw) > 0 {
			if err := json.Unmarshal(extractedRaw, &doc.ExtractedData); err != nil {
				return nil, fmt.Errorf("unmarshal extracted data: %w", err)
			}
		}
		documents = append(documents, doc)
	}
	return documents, rows.Err()
}

// ReplaceFindings swaps the tax year's full finding set in one transaction so
// concurrent readers never observe a partially written run.
func (s *PostgresStore) ReplaceFindings(ctx context.Context, taxYearID id.TaxYearID, findings []validation.Finding) error {
	return txcontext.Within(ctx, s.db, func(ctx context.Context) error {
		exec := s.execer(ctx)
		if _, err := exec.ExecContext(ctx, `
			DELETE FROM validations WHERE tax_year_id = $1
		`, taxYearID.String()); err != nil {
			return fmt.Errorf("delete findings: %w", err)
		}
		for _, f := range findings {
			var missing sql.NullString
			if f.MissingDocType != "" {
				missing = sql.NullString{String: f.MissingDocType, Valid: true}
			}
			if _, err := exec.ExecContext(ctx, `
				INSERT INTO validations (tax_year_id, rule_code, status, message, missing_doc_type, checked_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, taxYearID.String(), f.RuleCode, string(f.Status), f.Message, missing, f.CheckedAt); err != nil {
				return fmt.Errorf("insert finding %s: %w", f.RuleCode, err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) SetCompletenessScore(ctx context.Context, taxYearID id.TaxYearID, score int) error {
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE tax_years SET completeness_score = $1, updated_at = $2 WHERE id = $3
	`, score, time.Now(), taxYearID.String())
	if err != nil {
		return fmt.Errorf("set completeness score: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set completeness score: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListFindings(ctx context.Context, taxYearID id.TaxYearID) ([]validation.StoredFinding, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `
		SELECT rule_code, status, message, COALESCE(missing_doc_type, ''), checked_at
		FROM validations
		WHERE tax_year_id = $1
		ORDER BY checked_at, rule_code
	`, taxYearID.String())
	if err != nil {
		return nil, fmt.Errorf("list findings: %w", err)
	}
	defer rows.Close()

	var findings []validation.StoredFinding
	for rows.Next() {
		f := validation.StoredFinding{TaxYearID: taxYearID}
		if err := rows.Scan(&f.RuleCode, &f.Status, &f.Message, &f.MissingDocType, &f.CheckedAt); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		findings = append(findings, f)
	}
	return findings, rows.Err()
}
