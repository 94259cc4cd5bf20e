package handler

import (
	"strings"

	"taxsync/internal/client/models"
	"taxsync/internal/client/service"
	dErrors "taxsync/pkg/domain-errors"
)

// CreateClientRequest is the HTTP request body for POST /clients.
type CreateClientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Province  string `json:"province"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateClientRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.Province = strings.ToUpper(strings.TrimSpace(r.Province))

	if r.FirstName == "" {
		return dErrors.New(dErrors.CodeValidation, "first_name is required")
	}
	if r.LastName == "" {
		return dErrors.New(dErrors.CodeValidation, "last_name is required")
	}
	if r.Email == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if r.Province == "" {
		return dErrors.New(dErrors.CodeValidation, "province is required")
	}
	if !models.ValidProvince(r.Province) {
		return dErrors.New(dErrors.CodeValidation, "province must be a Canadian province or territory code")
	}
	return nil
}

// ToServiceRequest converts the HTTP body to the service request.
func (r *CreateClientRequest) ToServiceRequest() service.CreateRequest {
	return service.CreateRequest{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Province:  r.Province,
	}
}

// UpdateClientRequest is the HTTP request body for PATCH /clients/{clientID}.
// Absent fields are left unchanged.
type UpdateClientRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
	Province  *string `json:"province"`
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *UpdateClientRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.FirstName == nil && r.LastName == nil && r.Email == nil && r.Province == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one field must be provided")
	}
	if r.Province != nil {
		province := strings.ToUpper(strings.TrimSpace(*r.Province))
		if !models.ValidProvince(province) {
			return dErrors.New(dErrors.CodeValidation, "province must be a Canadian province or territory code")
		}
		r.Province = &province
	}
	return nil
}

// ToServiceRequest converts the HTTP body to the service request.
func (r *UpdateClientRequest) ToServiceRequest() service.UpdateRequest {
	return service.UpdateRequest{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Province:  r.Province,
	}
}
