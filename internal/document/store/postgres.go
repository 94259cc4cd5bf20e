package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"taxsync/internal/document/models"
	id "taxsync/pkg/domain"
	txcontext "taxsync/pkg/platform/tx"
)

// Postgres persists document metadata in the documents table. File bytes
// live in the blob store; only the storage key is recorded here.
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

const documentColumns = `id, tax_year_id, doc_type, COALESCE(doc_subtype, ''), file_name, content_type, size_bytes, storage_key, review_status, extracted_data, uploaded_at`

func (s *Postgres) Create(ctx context.Context, document *models.Document) error {
	extracted, err := marshalExtracted(document.ExtractedData)
	if err != nil {
		return err
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO documents (id, tax_year_id, doc_type, doc_subtype, file_name, content_type, size_bytes, storage_key, review_status, extracted_data, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		document.ID.String(), document.TaxYearID.String(), document.DocType,
		nullString(document.DocSubtype), document.FileName, document.ContentType,
		document.SizeBytes, document.StorageKey, string(document.ReviewStatus),
		extracted, document.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, document *models.Document) error {
	extracted, err := marshalExtracted(document.ExtractedData)
	if err != nil {
		return err
	}
	result, err := s.execer(ctx).ExecContext(ctx, `
		UPDATE documents
		SET review_status = $2, extracted_data = $3
		WHERE id = $1`,
		document.ID.String(), string(document.ReviewStatus), extracted,
	)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, documentID id.DocumentID) error {
	result, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, documentID.String())
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	row := s.execer(ctx).QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, documentID.String())
	document, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	return document, nil
}

func (s *Postgres) ListByTaxYear(ctx context.Context, taxYearID id.TaxYearID) ([]*models.Document, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE tax_year_id = $1 ORDER BY uploaded_at`, taxYearID.String())
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var out []*models.Document
	for rows.Next() {
		document, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		out = append(out, document)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var (
		document     models.Document
		rawID        string
		rawTaxYearID string
		reviewStatus string
		extracted    []byte
	)
	err := row.Scan(&rawID, &rawTaxYearID, &document.DocType, &document.DocSubtype,
		&document.FileName, &document.ContentType, &document.SizeBytes,
		&document.StorageKey, &reviewStatus, &extracted, &document.UploadedAt)
	if err != nil {
		return nil, err
	}
	if document.ID, err = id.ParseDocumentID(rawID); err != nil {
		return nil, fmt.Errorf("parsing document id: %w", err)
	}
	if document.TaxYearID, err = id.ParseTaxYearID(rawTaxYearID); err != nil {
		return nil, fmt.Errorf("parsing tax year id: %w", err)
	}
	document.ReviewStatus = models.ReviewStatus(reviewStatus)
	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &document.ExtractedData); err != nil {
			return nil, fmt.Errorf("decoding extracted data: %w", err)
		}
	}
	return &document, nil
}

func marshalExtracted(data map[string]any) (any, error) {
	if data == nil {
		return nil, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding extracted data: %w", err)
	}
	return raw, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
