package handler

import (
	dErrors "taxsync/pkg/domain-errors"
)

// ReviewRequest carries the accountant's verdict on one document.
type ReviewRequest struct {
	Status string `json:"status"`
}

func (r *ReviewRequest) Validate() error {
	if r.Status != "approved" && r.Status != "rejected" {
		return dErrors.New(dErrors.CodeValidation, "status must be approved or rejected")
	}
	return nil
}

// ExtractedDataRequest carries the parsed slip fields for one document.
type ExtractedDataRequest struct {
	ExtractedData map[string]any `json:"extracted_data"`
}

func (r *ExtractedDataRequest) Validate() error {
	if r.ExtractedData == nil {
		return dErrors.New(dErrors.CodeValidation, "extracted_data is required")
	}
	if len(r.ExtractedData) > 200 {
		return dErrors.New(dErrors.CodeValidation, "extracted_data has too many fields")
	}
	return nil
}
