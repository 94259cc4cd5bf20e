package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"taxsync/internal/document/models"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
)

// =============================================================================
// In-Memory Document Store Test Suite
// =============================================================================

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
	now   time.Time
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (s *MemoryStoreSuite) newDocument(taxYearID id.TaxYearID, docType string, uploadedAt time.Time) *models.Document {
	document, err := models.NewDocument(id.NewDocumentID(), taxYearID, docType, "",
		"slip.pdf", "application/pdf", 1024, "documents/key", uploadedAt)
	s.Require().NoError(err)
	return document
}

func (s *MemoryStoreSuite) TestRoundTrip() {
	taxYearID := id.NewTaxYearID()
	document := s.newDocument(taxYearID, "T4", s.now)
	document.ExtractedData = map[string]any{"employer_name": "Acme Corp"}
	s.Require().NoError(s.store.Create(s.ctx, document))

	loaded, err := s.store.FindByID(s.ctx, document.ID)
	s.Require().NoError(err)
	s.Equal(document, loaded)

	// Mutating the returned copy must not leak into the store.
	loaded.ExtractedData["employer_name"] = "Changed"
	reloaded, err := s.store.FindByID(s.ctx, document.ID)
	s.Require().NoError(err)
	s.Equal("Acme Corp", reloaded.ExtractedData["employer_name"])
}

func (s *MemoryStoreSuite) TestNotFound() {
	_, err := s.store.FindByID(s.ctx, id.NewDocumentID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.True(dErrors.HasCode(s.store.Update(s.ctx, s.newDocument(id.NewTaxYearID(), "T4", s.now)), dErrors.CodeNotFound))
	s.True(dErrors.HasCode(s.store.Delete(s.ctx, id.NewDocumentID()), dErrors.CodeNotFound))
}

func (s *MemoryStoreSuite) TestListByTaxYearOrdersByUpload() {
	taxYearID := id.NewTaxYearID()
	second := s.newDocument(taxYearID, "RL1", s.now.Add(time.Hour))
	first := s.newDocument(taxYearID, "T4", s.now)
	other := s.newDocument(id.NewTaxYearID(), "T5", s.now)
	for _, d := range []*models.Document{second, first, other} {
		s.Require().NoError(s.store.Create(s.ctx, d))
	}

	documents, err := s.store.ListByTaxYear(s.ctx, taxYearID)
	s.Require().NoError(err)
	s.Require().Len(documents, 2)
	s.Equal(first.ID, documents[0].ID)
	s.Equal(second.ID, documents[1].ID)
}

func (s *MemoryStoreSuite) TestDeleteRemoves() {
	document := s.newDocument(id.NewTaxYearID(), "T4", s.now)
	s.Require().NoError(s.store.Create(s.ctx, document))
	s.Require().NoError(s.store.Delete(s.ctx, document.ID))

	_, err := s.store.FindByID(s.ctx, document.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
