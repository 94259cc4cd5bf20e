package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "taxsync/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseClientID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseClientID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseTaxYearID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseTaxYearID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, TaxYearID(validUUID), id)
	})

	t.Run("round-trips through String", func(t *testing.T) {
		id := NewDocumentID()
		parsed, err := ParseDocumentID(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, parsed)
	})
}

// TestMarshalText verifies that a model holding typed IDs serializes them as
// UUID strings rather than byte arrays when marshaled directly.
func TestMarshalText(t *testing.T) {
	clientID := NewClientID()
	taxYearID := NewTaxYearID()

	out, err := json.Marshal(struct {
		ClientID  ClientID  `json:"client_id"`
		TaxYearID TaxYearID `json:"tax_year_id"`
	}{ClientID: clientID, TaxYearID: taxYearID})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"client_id":"`+clientID.String()+`"`)
	assert.Contains(t, string(out), `"tax_year_id":"`+taxYearID.String()+`"`)
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	clientID := ClientID(uuid.New())
	taxYearID := TaxYearID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ ClientID = taxYearID   // compile error
	// var _ TaxYearID = clientID   // compile error

	assert.NotEqual(t, uuid.UUID(clientID), uuid.UUID(taxYearID))
}

func TestIsNil(t *testing.T) {
	assert.True(t, ClientID{}.IsNil())
	assert.False(t, NewClientID().IsNil())
}
