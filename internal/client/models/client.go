// Package models defines the client aggregate. A client is one taxpayer
// managed by an accountant; the accountant is the tenancy boundary, so every
// read and write is scoped by accountant ID at the store layer.
package models

import (
	"strings"
	"time"

	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
)

// ClientStatus is the lifecycle state of a client record.
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// Client is the aggregate root for one taxpayer.
//
// Invariants:
//   - FirstName and LastName are non-empty and at most 100 characters
//   - Email is non-empty and well-formed enough to route mail
//   - Province is a valid Canadian province or territory code
//   - Status transitions: active <-> inactive only
//
// The province drives jurisdiction-specific completeness rules, so changing
// it changes which rules apply on the next validation run.
type Client struct {
	ID           id.ClientID     `json:"id"`
	AccountantID id.AccountantID `json:"accountant_id"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	Email        string          `json:"email"`
	Province     string          `json:"province"`
	Status       ClientStatus    `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// FullName renders the display name used in notifications and audit trails.
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Deactivate transitions the client to inactive. Existing tax years remain
// readable; new document uploads and validation runs are rejected at the
// service layer.
func (c *Client) Deactivate(now time.Time) error {
	if c.Status == ClientStatusInactive {
		return dErrors.New(dErrors.CodeConflict, "client is already inactive")
	}
	c.Status = ClientStatusInactive
	c.UpdatedAt = now
	return nil
}

// Reactivate transitions the client back to active.
func (c *Client) Reactivate(now time.Time) error {
	if c.Status == ClientStatusActive {
		return dErrors.New(dErrors.CodeConflict, "client is already active")
	}
	c.Status = ClientStatusActive
	c.UpdatedAt = now
	return nil
}

// NewClient constructs a validated client record.
func NewClient(clientID id.ClientID, accountantID id.AccountantID, firstName, lastName, email, province string, now time.Time) (*Client, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.ToLower(strings.TrimSpace(email))
	province = strings.ToUpper(strings.TrimSpace(province))

	if accountantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "accountant id is required")
	}
	if firstName == "" || lastName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client name cannot be empty")
	}
	if len(firstName) > 100 || len(lastName) > 100 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client name must be 100 characters or less")
	}
	if !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client email is invalid")
	}
	if !ValidProvince(province) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "province must be a Canadian province or territory code")
	}

	return &Client{
		ID:           clientID,
		AccountantID: accountantID,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		Province:     province,
		Status:       ClientStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
