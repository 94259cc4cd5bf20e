package handler

import (
	"time"

	"taxsync/internal/validation"
)

// RunResponse is the HTTP response for POST /tax-years/{taxYearID}/validations.
type RunResponse struct {
	CompletenessScore int               `json:"completeness_score"`
	Findings          []FindingResponse `json:"findings"`
}

// FindingResponse is one finding in the response.
type FindingResponse struct {
	RuleCode       string    `json:"rule_code"`
	Status         string    `json:"status"`
	Severity       string    `json:"severity"`
	Message        string    `json:"message"`
	MissingDocType string    `json:"missing_doc_type,omitempty"`
	CheckedAt      time.Time `json:"checked_at"`
}

// FromReport converts a domain report to an HTTP response. Findings is never
// null in the payload: an empty run serializes as an empty array.
func FromReport(report *validation.Report) *RunResponse {
	findings := make([]FindingResponse, len(report.Findings))
	for i, f := range report.Findings {
		findings[i] = FindingResponse{
			RuleCode:       f.RuleCode,
			Status:         string(f.Status),
			Severity:       string(f.Severity),
			Message:        f.Message,
			MissingDocType: f.MissingDocType,
			CheckedAt:      f.CheckedAt,
		}
	}
	return &RunResponse{
		CompletenessScore: report.CompletenessScore,
		Findings:          findings,
	}
}
