package handler

import (
	"time"

	"taxsync/internal/document/models"
	"taxsync/internal/document/service"
	"taxsync/internal/validation"
)

// DocumentResponse is the HTTP representation of a document.
type DocumentResponse struct {
	ID            string         `json:"id"`
	TaxYearID     string         `json:"tax_year_id"`
	DocType       string         `json:"doc_type"`
	DocSubtype    string         `json:"doc_subtype,omitempty"`
	FileName      string         `json:"file_name"`
	ContentType   string         `json:"content_type"`
	SizeBytes     int64          `json:"size_bytes"`
	ReviewStatus  string         `json:"review_status"`
	ExtractedData map[string]any `json:"extracted_data,omitempty"`
	UploadedAt    time.Time      `json:"uploaded_at"`
}

// ListDocumentsResponse is the HTTP response for GET /tax-years/{taxYearID}/documents.
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

// UploadResponse pairs the stored document with the fresh validation report.
// Report is null when revalidation failed after the upload.
type UploadResponse struct {
	Document DocumentResponse `json:"document"`
	Report   *ReportResponse  `json:"report"`
}

// DeleteResponse returns the post-deletion validation outcome.
type DeleteResponse struct {
	Report *ReportResponse `json:"report"`
}

// ReportResponse is the validation outcome embedded in document responses.
type ReportResponse struct {
	CompletenessScore int               `json:"completeness_score"`
	Findings          []FindingResponse `json:"findings"`
}

// FindingResponse is one finding in the report.
type FindingResponse struct {
	RuleCode       string    `json:"rule_code"`
	Status         string    `json:"status"`
	Message        string    `json:"message"`
	MissingDocType string    `json:"missing_doc_type,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}

// FromDocument converts a domain document to its HTTP representation.
func FromDocument(document *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:            document.ID.String(),
		TaxYearID:     document.TaxYearID.String(),
		DocType:       document.DocType,
		DocSubtype:    document.DocSubtype,
		FileName:      document.FileName,
		ContentType:   document.ContentType,
		SizeBytes:     document.SizeBytes,
		ReviewStatus:  string(document.ReviewStatus),
		ExtractedData: document.ExtractedData,
		UploadedAt:    document.UploadedAt,
	}
}

// FromDocuments converts a list; Documents is never null in the payload.
func FromDocuments(documents []*models.Document) *ListDocumentsResponse {
	out := make([]DocumentResponse, len(documents))
	for i, document := range documents {
		out[i] = FromDocument(document)
	}
	return &ListDocumentsResponse{Documents: out}
}

// FromUploadResult converts the upload outcome.
func FromUploadResult(result *service.UploadResult) *UploadResponse {
	return &UploadResponse{
		Document: FromDocument(result.Document),
		Report:   FromReport(result.Report),
	}
}

// FromReport converts a live validation report; nil stays nil.
func FromReport(report *validation.Report) *ReportResponse {
	if report == nil {
		return nil
	}
	findings := make([]FindingResponse, len(report.Findings))
	for i, f := range report.Findings {
		findings[i] = FindingResponse{
			RuleCode:       f.RuleCode,
			Status:         string(f.Status),
			Message:        f.Message,
			MissingDocType: f.MissingDocType,
			CheckedAt:      f.CheckedAt,
		}
	}
	return &ReportResponse{CompletenessScore: report.CompletenessScore, Findings: findings}
}
