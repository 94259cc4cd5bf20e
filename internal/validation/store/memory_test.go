package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"taxsync/internal/validation"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
)

// =============================================================================
// In-Memory Validation Store Test Suite
// =============================================================================

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) seed(year int) *validation.TaxYearContext {
	snapshot := &validation.TaxYearContext{
		TaxYearID: id.NewTaxYearID(),
		ClientID:  id.NewClientID(),
		Year:      year,
		Client:    validation.ClientContext{Province: "QC"},
		Profile:   validation.Profile{"has_rrsp_contributions": true},
		Documents: []validation.DocumentSnapshot{
			{ID: id.NewDocumentID(), DocType: "T4"},
		},
	}
	snapshot.Client.ID = snapshot.ClientID
	s.store.Seed(snapshot)
	return snapshot
}

func (s *MemoryStoreSuite) TestLoadTaxYearContext() {
	s.Run("missing tax year returns not found", func() {
		_, err := s.store.LoadTaxYearContext(s.ctx, id.NewTaxYearID())
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("seeded tax year round-trips", func() {
		seeded := s.seed(2025)
		loaded, err := s.store.LoadTaxYearContext(s.ctx, seeded.TaxYearID)
		s.Require().NoError(err)
		s.Equal(seeded.ClientID, loaded.ClientID)
		s.Equal(2025, loaded.Year)
		s.Equal("QC", loaded.Client.Province)
		s.Len(loaded.Documents, 1)
	})
}

func (s *MemoryStoreSuite) TestLoadPreviousYearDocuments() {
	s.Run("missing prior year returns nil without error", func() {
		docs, err := s.store.LoadPreviousYearDocuments(s.ctx, id.NewClientID(), 2024)
		s.NoError(err)
		s.Nil(docs)
	})

	s.Run("prior year documents are returned by client and year", func() {
		seeded := s.seed(2024)
		docs, err := s.store.LoadPreviousYearDocuments(s.ctx, seeded.ClientID, 2024)
		s.Require().NoError(err)
		s.Len(docs, 1)
		s.Equal("T4", docs[0].DocType)
	})
}

func (s *MemoryStoreSuite) TestFindings() {
	s.Run("replace discards the previous set", func() {
		taxYearID := id.NewTaxYearID()
		now := time.Now()

		err := s.store.ReplaceFindings(s.ctx, taxYearID, []validation.Finding{
			{TaxYearID: taxYearID, RuleCode: "A", Status: validation.StatusFail, CheckedAt: now},
			{TaxYearID: taxYearID, RuleCode: "B", Status: validation.StatusPass, CheckedAt: now},
		})
		s.Require().NoError(err)

		err = s.store.ReplaceFindings(s.ctx, taxYearID, []validation.Finding{
			{TaxYearID: taxYearID, RuleCode: "C", Status: validation.StatusPass, CheckedAt: now},
		})
		s.Require().NoError(err)

		stored, err := s.store.ListFindings(s.ctx, taxYearID)
		s.Require().NoError(err)
		s.Require().Len(stored, 1)
		s.Equal("C", stored[0].RuleCode)
	})

	s.Run("severity is not part of the stored shape", func() {
		taxYearID := id.NewTaxYearID()
		err := s.store.ReplaceFindings(s.ctx, taxYearID, []validation.Finding{
			{TaxYearID: taxYearID, RuleCode: "A", Status: validation.StatusFail, Severity: validation.SeverityError, MissingDocType: "RL1"},
		})
		s.Require().NoError(err)

		stored, err := s.store.ListFindings(s.ctx, taxYearID)
		s.Require().NoError(err)
		s.Require().Len(stored, 1)
		s.Equal("RL1", stored[0].MissingDocType)
	})

	s.Run("score write is visible to readers", func() {
		taxYearID := id.NewTaxYearID()
		s.Require().NoError(s.store.SetCompletenessScore(s.ctx, taxYearID, 73))
		s.Equal(73, s.store.Score(taxYearID))
	})
}
