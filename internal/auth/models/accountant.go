// Package models defines the accountant aggregate: the tenant boundary of
// the whole system. Every client, tax year, and document hangs off one
// accountant.
package models

import (
	"strings"
	"time"

	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
)

// RoleAccountant is the only role issued today. The claim is carried so
// adding an admin or client portal role later does not change the token
// shape.
const RoleAccountant = "accountant"

// Accountant is one registered practitioner account.
type Accountant struct {
	ID           id.AccountantID `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	PasswordHash string          `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewAccountant constructs a validated accountant. The password hash is
// produced by the service; this constructor never sees the plaintext.
func NewAccountant(accountantID id.AccountantID, email, name, passwordHash string, now time.Time) (*Accountant, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	if email == "" || !strings.Contains(email, "@") {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "a valid email is required")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name is required")
	}
	if len(name) > 200 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name is too long")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash is required")
	}

	return &Accountant{
		ID:           accountantID,
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
