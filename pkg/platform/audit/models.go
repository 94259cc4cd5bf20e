// Package audit captures key domain actions as events. Events are written to
// a transactional outbox alongside the domain write and published to Kafka by
// the outbox worker, so the trail survives crashes without slowing requests.
package audit

import (
	"time"

	id "taxsync/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and downstream routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// document lifecycle, validation outcomes, tax year submissions.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring:
	// auth failures, lockouts.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and
	// operational visibility. Shorter retention, may be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category     EventCategory
	Timestamp    time.Time
	ClientID     id.ClientID
	AccountantID id.AccountantID
	Subject      string // what the action touched, e.g. a document or tax year ID
	Action       string
	TaxYear      int    // calendar year when the action is year-scoped, else 0
	Decision     string // outcome where the action has one, e.g. a score
	Reason       string
	RequestID    string // correlation ID from HTTP request context
	Email        string // actor email when available (e.g. failed logins)
}

type AuditEvent string

const (
	// Auth events
	EventLoginSucceeded   AuditEvent = "login_succeeded"
	EventLoginFailed      AuditEvent = "login_failed"
	EventLockoutTriggered AuditEvent = "lockout_triggered"
	EventTokenRevoked     AuditEvent = "token_revoked"

	// Client events
	EventClientCreated     AuditEvent = "client_created"
	EventClientDeactivated AuditEvent = "client_deactivated"

	// Document events
	EventDocumentUploaded AuditEvent = "document_uploaded"
	EventDocumentDeleted  AuditEvent = "document_deleted"

	// Tax year events
	EventProfileUpdated   AuditEvent = "profile_updated"
	EventTaxYearSubmitted AuditEvent = "taxyear_submitted"
	EventReviewCompleted  AuditEvent = "review_completed"

	// Validation events
	EventValidationRun AuditEvent = "validation_run"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	// Compliance events - require tamper-proof storage
	EventDocumentUploaded: CategoryCompliance,
	EventDocumentDeleted:  CategoryCompliance,
	EventTaxYearSubmitted: CategoryCompliance,
	EventReviewCompleted:  CategoryCompliance,
	EventValidationRun:    CategoryCompliance,

	// Security events - feed into monitoring and alerting
	EventLoginFailed:       CategorySecurity,
	EventLockoutTriggered:  CategorySecurity,
	EventTokenRevoked:      CategorySecurity,
	EventClientDeactivated: CategorySecurity,

	// Operations events - routine activity
	EventLoginSucceeded: CategoryOperations,
	EventClientCreated:  CategoryOperations,
	EventProfileUpdated: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
