// Package models defines the document aggregate: one uploaded slip or
// receipt attached to a tax year.
package models

import (
	"strings"
	"time"

	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
)

// ReviewStatus is the accountant's verdict on one document.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// MaxFileSize bounds uploads at 20 MiB, comfortably above any scanned slip.
const MaxFileSize = 20 << 20

// Document is one uploaded file plus the metadata the rules engine consumes.
//
// Invariants:
//   - DocType is one of the closed vocabulary in doctype.go
//   - FileName and ContentType are non-empty
//   - SizeBytes is positive and at most MaxFileSize
//   - ExtractedData is written by the extraction flow after upload and may
//     be absent or arbitrarily shaped
type Document struct {
	ID            id.DocumentID  `json:"id"`
	TaxYearID     id.TaxYearID   `json:"tax_year_id"`
	DocType       string         `json:"doc_type"`
	DocSubtype    string         `json:"doc_subtype,omitempty"`
	FileName      string         `json:"file_name"`
	ContentType   string         `json:"content_type"`
	SizeBytes     int64          `json:"size_bytes"`
	StorageKey    string         `json:"-"`
	ReviewStatus  ReviewStatus   `json:"review_status"`
	ExtractedData map[string]any `json:"extracted_data,omitempty"`
	UploadedAt    time.Time      `json:"uploaded_at"`
}

// SetReview applies the accountant's verdict. Pending is not a verdict, so
// moving back to it is rejected.
func (d *Document) SetReview(status ReviewStatus) error {
	if status != ReviewApproved && status != ReviewRejected {
		return dErrors.New(dErrors.CodeValidation, "review status must be approved or rejected")
	}
	d.ReviewStatus = status
	return nil
}

// NewDocument constructs a validated document record in pending review.
func NewDocument(documentID id.DocumentID, taxYearID id.TaxYearID, docType, docSubtype, fileName, contentType string, sizeBytes int64, storageKey string, now time.Time) (*Document, error) {
	docType = strings.ToUpper(strings.TrimSpace(docType))
	docSubtype = strings.TrimSpace(docSubtype)
	fileName = strings.TrimSpace(fileName)

	if taxYearID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tax year id is required")
	}
	if !ValidDocType(docType) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown document type")
	}
	if fileName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "file name is required")
	}
	if contentType == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "content type is required")
	}
	if sizeBytes <= 0 || sizeBytes > MaxFileSize {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "file size is out of range")
	}

	return &Document{
		ID:           documentID,
		TaxYearID:    taxYearID,
		DocType:      docType,
		DocSubtype:   docSubtype,
		FileName:     fileName,
		ContentType:  contentType,
		SizeBytes:    sizeBytes,
		StorageKey:   storageKey,
		ReviewStatus: ReviewPending,
		UploadedAt:   now,
	}, nil
}
