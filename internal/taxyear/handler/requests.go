package handler

import (
	"taxsync/internal/taxyear/models"
	dErrors "taxsync/pkg/domain-errors"
)

// OpenTaxYearRequest is the HTTP request body for POST /clients/{clientID}/tax-years.
type OpenTaxYearRequest struct {
	Year int `json:"year"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
// The upper year bound depends on the wall clock, so it stays in the service.
func (r *OpenTaxYearRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Year < models.MinYear {
		return dErrors.New(dErrors.CodeValidation, "year is out of range")
	}
	return nil
}

// UpdateProfileRequest is the HTTP request body for PUT /tax-years/{taxYearID}/profile.
// The profile replaces the stored one wholesale; there is no merge.
type UpdateProfileRequest struct {
	Profile map[string]any `json:"profile"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *UpdateProfileRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Profile == nil {
		return dErrors.New(dErrors.CodeValidation, "profile is required")
	}
	if len(r.Profile) > 100 {
		return dErrors.New(dErrors.CodeValidation, "profile must have at most 100 entries")
	}
	return nil
}
