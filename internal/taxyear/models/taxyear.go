// Package models defines the tax year aggregate: one client's filing for one
// calendar year, carrying the self-reported profile and the completeness
// score computed by the validation engine.
package models

import (
	"time"

	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
)

// MinYear bounds how far back a tax year can be opened. CRA reassessment
// windows make anything older uninteresting to the practice.
const MinYear = 2000

// Profile is the client's self-reported tax situation: boolean flags for
// income sources and deduction claims. Stored as JSONB and consumed by the
// validation rule triggers.
type Profile map[string]any

// TaxYear is the aggregate root for one filing.
//
// Invariants:
//   - Year is within [MinYear, next calendar year]
//   - Status follows the lifecycle graph in status.go
//   - CompletenessScore is within [0, 100] and owned by the validation
//     engine; lifecycle operations never write it directly
//   - SubmittedAt is set exactly once, on the first move to submitted, and
//     survives reopens and resubmissions
type TaxYear struct {
	ID                id.TaxYearID `json:"id"`
	ClientID          id.ClientID  `json:"client_id"`
	Year              int          `json:"year"`
	Status            Status       `json:"status"`
	Profile           Profile      `json:"profile"`
	CompletenessScore int          `json:"completeness_score"`
	SubmittedAt       *time.Time   `json:"submitted_at,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// Transition moves the tax year to target, rejecting moves the lifecycle
// graph does not allow. The first move to submitted stamps SubmittedAt.
func (t *TaxYear) Transition(target Status, now time.Time) error {
	if !t.Status.CanTransitionTo(target) {
		return dErrors.New(dErrors.CodeConflict, "tax year cannot move from "+string(t.Status)+" to "+string(target))
	}
	if target == StatusSubmitted && t.SubmittedAt == nil {
		submittedAt := now
		t.SubmittedAt = &submittedAt
	}
	t.Status = target
	t.UpdatedAt = now
	return nil
}

// RequireMutable rejects edits on frozen tax years.
func (t *TaxYear) RequireMutable() error {
	if !t.Status.Mutable() {
		return dErrors.New(dErrors.CodeConflict, "tax year is "+string(t.Status)+" and no longer accepts changes")
	}
	return nil
}

// ValidYear checks the year bound against the wall clock.
func ValidYear(year int, now time.Time) bool {
	return year >= MinYear && year <= now.Year()+1
}

// NewTaxYear constructs a draft tax year with an empty profile.
func NewTaxYear(taxYearID id.TaxYearID, clientID id.ClientID, year int, now time.Time) (*TaxYear, error) {
	if clientID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "client id is required")
	}
	if !ValidYear(year, now) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "year is out of range")
	}
	return &TaxYear{
		ID:        taxYearID,
		ClientID:  clientID,
		Year:      year,
		Status:    StatusDraft,
		Profile:   Profile{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
