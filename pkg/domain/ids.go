// Package domain defines typed identifiers shared across modules.
//
// Each aggregate gets its own UUID-backed type so the compiler rejects
// cross-type assignment (a DocumentID can never be passed where a TaxYearID
// is expected). Parse functions enforce the trust-boundary invariant that
// IDs are valid, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "taxsync/pkg/domain-errors"
)

type (
	// AccountantID identifies an accountant (the tenant boundary).
	AccountantID uuid.UUID
	// ClientID identifies a client belonging to an accountant.
	ClientID uuid.UUID
	// TaxYearID identifies one client's filing for one calendar year.
	TaxYearID uuid.UUID
	// DocumentID identifies one uploaded document.
	DocumentID uuid.UUID
)

func (id AccountantID) String() string { return uuid.UUID(id).String() }
func (id ClientID) String() string     { return uuid.UUID(id).String() }
func (id TaxYearID) String() string    { return uuid.UUID(id).String() }
func (id DocumentID) String() string   { return uuid.UUID(id).String() }

func (id AccountantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ClientID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TaxYearID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// MarshalText makes the typed IDs encode as UUID strings. Defined types do
// not inherit uuid.UUID's marshaling, so without these a directly marshaled
// model would carry raw 16-byte arrays.
func (id AccountantID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ClientID) MarshalText() ([]byte, error)     { return uuid.UUID(id).MarshalText() }
func (id TaxYearID) MarshalText() ([]byte, error)    { return uuid.UUID(id).MarshalText() }
func (id DocumentID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return parsed, nil
}

// ParseAccountantID parses and validates an accountant ID.
func ParseAccountantID(raw string) (AccountantID, error) {
	parsed, err := parseUUID(raw)
	return AccountantID(parsed), err
}

// ParseClientID parses and validates a client ID.
func ParseClientID(raw string) (ClientID, error) {
	parsed, err := parseUUID(raw)
	return ClientID(parsed), err
}

// ParseTaxYearID parses and validates a tax year ID.
func ParseTaxYearID(raw string) (TaxYearID, error) {
	parsed, err := parseUUID(raw)
	return TaxYearID(parsed), err
}

// ParseDocumentID parses and validates a document ID.
func ParseDocumentID(raw string) (DocumentID, error) {
	parsed, err := parseUUID(raw)
	return DocumentID(parsed), err
}

// NewAccountantID generates a fresh accountant ID.
func NewAccountantID() AccountantID { return AccountantID(uuid.New()) }

// NewClientID generates a fresh client ID.
func NewClientID() ClientID { return ClientID(uuid.New()) }

// NewTaxYearID generates a fresh tax year ID.
func NewTaxYearID() TaxYearID { return TaxYearID(uuid.New()) }

// NewDocumentID generates a fresh document ID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }
