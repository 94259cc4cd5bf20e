package handler

import (
	"time"

	"taxsync/internal/taxyear/models"
	"taxsync/internal/taxyear/service"
	"taxsync/internal/validation"
)

// TaxYearResponse is the HTTP representation of a tax year.
type TaxYearResponse struct {
	ID                string         `json:"id"`
	ClientID          string         `json:"client_id"`
	Year              int            `json:"year"`
	Status            string         `json:"status"`
	Profile           map[string]any `json:"profile"`
	CompletenessScore int            `json:"completeness_score"`
	SubmittedAt       *time.Time     `json:"submitted_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// ListTaxYearsResponse is the HTTP response for GET /clients/{clientID}/tax-years.
type ListTaxYearsResponse struct {
	TaxYears []TaxYearResponse `json:"tax_years"`
}

// ProfileUpdateResponse pairs the saved tax year with the fresh validation
// report. Report is null when revalidation failed after the save.
type ProfileUpdateResponse struct {
	TaxYear TaxYearResponse `json:"tax_year"`
	Report  *ReportResponse `json:"report"`
}

// ReportResponse is the validation outcome embedded in tax year responses.
type ReportResponse struct {
	CompletenessScore int               `json:"completeness_score"`
	Findings          []FindingResponse `json:"findings"`
}

// FindingResponse is one stored finding.
type FindingResponse struct {
	RuleCode       string    `json:"rule_code"`
	Status         string    `json:"status"`
	Message        string    `json:"message"`
	MissingDocType string    `json:"missing_doc_type,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}

// CompletenessResponse is the HTTP response for GET /tax-years/{taxYearID}/completeness.
type CompletenessResponse struct {
	TaxYearID         string            `json:"tax_year_id"`
	CompletenessScore int               `json:"completeness_score"`
	Findings          []FindingResponse `json:"findings"`
}

// FromTaxYear converts a domain tax year to its HTTP representation.
func FromTaxYear(taxYear *models.TaxYear) TaxYearResponse {
	return TaxYearResponse{
		ID:                taxYear.ID.String(),
		ClientID:          taxYear.ClientID.String(),
		Year:              taxYear.Year,
		Status:            string(taxYear.Status),
		Profile:           taxYear.Profile,
		CompletenessScore: taxYear.CompletenessScore,
		SubmittedAt:       taxYear.SubmittedAt,
		CreatedAt:         taxYear.CreatedAt,
		UpdatedAt:         taxYear.UpdatedAt,
	}
}

// FromTaxYears converts a list; TaxYears is never null in the payload.
func FromTaxYears(taxYears []*models.TaxYear) *ListTaxYearsResponse {
	out := make([]TaxYearResponse, len(taxYears))
	for i, taxYear := range taxYears {
		out[i] = FromTaxYear(taxYear)
	}
	return &ListTaxYearsResponse{TaxYears: out}
}

// FromReport converts a live validation report.
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

// FromCompleteness converts the stored completeness view.
func FromCompleteness(view *service.CompletenessView) *CompletenessResponse {
	findings := make([]FindingResponse, len(view.Findings))
	for i, f := range view.Findings {
		findings[i] = FindingResponse{
			RuleCode:       f.RuleCode,
			Status:         string(f.Status),
			Message:        f.Message,
			MissingDocType: f.MissingDocType,
			CheckedAt:      f.CheckedAt,
		}
	}
	return &CompletenessResponse{
		TaxYearID:         view.TaxYearID.String(),
		CompletenessScore: view.CompletenessScore,
		Findings:          findings,
	}
}
