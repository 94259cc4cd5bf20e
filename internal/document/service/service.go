// Package service handles document uploads and lifecycle. File bytes go to
// the blob store, metadata to the document store, and every change that
// alters what the rules engine sees triggers a revalidation of the tax year.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"taxsync/internal/document/metrics"
	"taxsync/internal/document/models"
	"taxsync/internal/document/ports"
	taxyearmodels "taxsync/internal/taxyear/models"
	"taxsync/internal/validation"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/platform/audit"
	"taxsync/pkg/requestcontext"
)

// DocumentStore is the persistence port for document metadata.
type DocumentStore interface {
	Create(ctx context.Context, document *models.Document) error
	Update(ctx context.Context, document *models.Document) error
	Delete(ctx context.Context, documentID id.DocumentID) error
	FindByID(ctx context.Context, documentID id.DocumentID) (*models.Document, error)
	ListByTaxYear(ctx context.Context, taxYearID id.TaxYearID) ([]*models.Document, error)
}

// TaxYearGate resolves and authorizes tax years and triggers revalidation.
// Implemented by the tax year service; Get is accountant-scoped so this
// doubles as the tenancy check.
type TaxYearGate interface {
	Get(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*taxyearmodels.TaxYear, error)
	Revalidate(ctx context.Context, taxYearID id.TaxYearID) (*validation.Report, error)
}

// Service manages the document lifecycle.
type Service struct {
	documents DocumentStore
	blobs     ports.BlobStore
	taxYears  TaxYearGate
	logger    *slog.Logger
	auditor   audit.Emitter
	metrics   *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditor(auditor audit.Emitter) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a Service.
func New(documents DocumentStore, blobs ports.BlobStore, taxYears TaxYearGate, opts ...Option) *Service {
	s := &Service{
		documents: documents,
		blobs:     blobs,
		taxYears:  taxYears,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadRequest carries one incoming file plus its declared type.
type UploadRequest struct {
	DocType     string
	DocSubtype  string
	FileName    string
	ContentType string
	SizeBytes   int64
	Content     io.Reader
}

// UploadResult is the stored document and the revalidation report, which is
// nil when the rules engine could not run.
type UploadResult struct {
	Document *models.Document
	Report   *validation.Report
}

// Upload stores the file, records its metadata, and revalidates the tax
// year. Uploads are only accepted while the tax year is editable.
func (s *Service) Upload(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID, req UploadRequest) (*UploadResult, error) {
	taxYear, err := s.taxYears.Get(ctx, accountantID, taxYearID)
	if err != nil {
		return nil, err
	}
	if err := taxYear.RequireMutable(); err != nil {
		return nil, err
	}

	documentID := id.NewDocumentID()
	storageKey := blobKey(taxYearID, documentID)
	document, err := models.NewDocument(documentID, taxYearID, req.DocType, req.DocSubtype,
		req.FileName, req.ContentType, req.SizeBytes, storageKey, requestcontext.Now(ctx))
	if err != nil {
		// Invariant violations on externally supplied input surface as
		// validation errors to the caller.
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid document")
		}
		return nil, err
	}

	if err := s.blobs.Put(ctx, storageKey, req.ContentType, req.Content); err != nil {
		return nil, fmt.Errorf("storing document content: %w", err)
	}
	if err := s.documents.Create(ctx, document); err != nil {
		// Best effort cleanup so a failed metadata write does not leak
		// an orphan blob.
		if delErr := s.blobs.Delete(ctx, storageKey); delErr != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "orphan blob cleanup failed",
				"storage_key", storageKey,
				"error", delErr,
			)
		}
		return nil, err
	}

	s.metrics.RecordUpload(document.DocType, document.SizeBytes)
	s.emitAudit(ctx, audit.EventDocumentUploaded, document, taxYear, document.DocType)
	if s.logger != nil {
		s.logger.InfoContext(ctx, "document uploaded",
			"document_id", document.ID,
			"tax_year_id", taxYearID,
			"doc_type", document.DocType,
			"size_bytes", document.SizeBytes,
		)
	}

	return &UploadResult{Document: document, Report: s.revalidate(ctx, taxYearID)}, nil
}

// Get returns one document after checking the caller owns its tax year.
func (s *Service) Get(ctx context.Context, accountantID id.AccountantID, documentID id.DocumentID) (*models.Document, error) {
	document, _, err := s.authorize(ctx, accountantID, documentID)
	return document, err
}

// List returns the documents of a tax year in upload order.
func (s *Service) List(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) ([]*models.Document, error) {
	if _, err := s.taxYears.Get(ctx, accountantID, taxYearID); err != nil {
		return nil, err
	}
	return s.documents.ListByTaxYear(ctx, taxYearID)
}

// Download streams the stored file bytes. The caller must close the reader.
func (s *Service) Download(ctx context.Context, accountantID id.AccountantID, documentID id.DocumentID) (*models.Document, io.ReadCloser, error) {
	document, _, err := s.authorize(ctx, accountantID, documentID)
	if err != nil {
		return nil, nil, err
	}
	content, err := s.blobs.Get(ctx, document.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("loading document content: %w", err)
	}
	return document, content, nil
}

// Delete removes the metadata row and the stored bytes, then revalidates.
// Like uploads, deletion is only allowed while the tax year is editable.
func (s *Service) Delete(ctx context.Context, accountantID id.AccountantID, documentID id.DocumentID) (*validation.Report, error) {
	document, taxYear, err := s.authorize(ctx, accountantID, documentID)
	if err != nil {
		return nil, err
	}
	if err := taxYear.RequireMutable(); err != nil {
		return nil, err
	}

	if err := s.documents.Delete(ctx, documentID); err != nil {
		return nil, err
	}
	if err := s.blobs.Delete(ctx, document.StorageKey); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "blob delete failed",
			"document_id", documentID,
			"storage_key", document.StorageKey,
			"error", err,
		)
	}

	s.metrics.RecordDeletion()
	s.emitAudit(ctx, audit.EventDocumentDeleted, document, taxYear, document.DocType)
	return s.revalidate(ctx, document.TaxYearID), nil
}

// Review records the accountant's verdict on a document.
func (s *Service) Review(ctx context.Context, accountantID id.AccountantID, documentID id.DocumentID, status models.ReviewStatus) (*models.Document, error) {
	document, _, err := s.authorize(ctx, accountantID, documentID)
	if err != nil {
		return nil, err
	}
	if err := document.SetReview(status); err != nil {
		return nil, err
	}
	if err := s.documents.Update(ctx, document); err != nil {
		return nil, err
	}
	return document, nil
}

// SetExtractedData attaches parsed slip fields to a document and revalidates,
// since employer and payer names feed the pairing and comparison rules.
func (s *Service) SetExtractedData(ctx context.Context, accountantID id.AccountantID, documentID id.DocumentID, data map[string]any) (*models.Document, *validation.Report, error) {
	document, _, err := s.authorize(ctx, accountantID, documentID)
	if err != nil {
		return nil, nil, err
	}
	document.ExtractedData = data
	if err := s.documents.Update(ctx, document); err != nil {
		return nil, nil, err
	}
	return document, s.revalidate(ctx, document.TaxYearID), nil
}

func blobKey(taxYearID id.TaxYearID, documentID id.DocumentID) string {
	return fmt.Sprintf("documents/%s/%s", taxYearID, documentID)
}

// authorize loads a document and proves the caller owns its tax year.
// Foreign documents read as not found so their existence does not leak.
func (s *Service) authorize(ctx context.Context, accountantID id.AccountantID, documentID id.DocumentID) (*models.Document, *taxyearmodels.TaxYear, error) {
	document, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	taxYear, err := s.taxYears.Get(ctx, accountantID, document.TaxYearID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, nil, err
	}
	return document, taxYear, nil
}

func (s *Service) revalidate(ctx context.Context, taxYearID id.TaxYearID) *validation.Report {
	report, err := s.taxYears.Revalidate(ctx, taxYearID)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "revalidation failed",
				"tax_year_id", taxYearID,
				"error", err,
			)
		}
		return nil
	}
	return report
}

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, document *models.Document, taxYear *taxyearmodels.TaxYear, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		ClientID:  taxYear.ClientID,
		Subject:   document.ID.String(),
		Action:    string(action),
		TaxYear:   taxYear.Year,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"document_id", document.ID,
			"action", action,
			"error", err,
		)
	}
}
