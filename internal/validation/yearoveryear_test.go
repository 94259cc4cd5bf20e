package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "taxsync/pkg/domain"
)

// =============================================================================
// Year-over-Year Comparator Test Suite
// =============================================================================

type YearOverYearSuite struct {
	suite.Suite
	taxYearID id.TaxYearID
	now       time.Time
}

func TestYearOverYearSuite(t *testing.T) {
	suite.Run(t, new(YearOverYearSuite))
}

func (s *YearOverYearSuite) SetupTest() {
	s.taxYearID = id.NewTaxYearID()
	s.now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
}

func (s *YearOverYearSuite) TestCompare() {
	s.Run("first year client produces no findings", func() {
		findings := compareYearOverYear(s.taxYearID, nil, docs("T4"), s.now)
		s.Empty(findings)
	})

	s.Run("recurring type present last year but missing now warns", func() {
		previous := []DocumentSnapshot{{
			ID:            id.NewDocumentID(),
			DocType:       "T4",
			ExtractedData: map[string]any{"employer_name": "Acme Corp"},
		}}
		findings := compareYearOverYear(s.taxYearID, previous, nil, s.now)
		s.Require().Len(findings, 1)
		s.Equal(RuleCodeYearOverYear, findings[0].RuleCode)
		s.Equal(StatusWarning, findings[0].Status)
		s.Equal(SeverityWarning, findings[0].Severity)
		s.Equal("T4", findings[0].MissingDocType)
		s.Equal("Last year you uploaded T4 from Acme Corp. Did your situation change?", findings[0].Message)
	})

	s.Run("type present in both years emits nothing", func() {
		findings := s.compare(docs("T4", "T5"), docs("T4", "T5"))
		s.Empty(findings)
	})

	s.Run("non-recurring types are never flagged", func() {
		findings := s.compare(docs("RRSP_RECEIPT", "MEDICAL_RECEIPT", "T2202"), nil)
		s.Empty(findings)
	})

	s.Run("duplicate prior-year slips of one type flag once", func() {
		previous := docs("T4", "T4", "T4")
		findings := s.compare(previous, nil)
		s.Len(findings, 1)
	})

	s.Run("subtype is the fallback when no entity was extracted", func() {
		previous := []DocumentSnapshot{{
			ID:         id.NewDocumentID(),
			DocType:    "T5",
			DocSubtype: "investment income",
		}}
		findings := s.compare(previous, nil)
		s.Require().Len(findings, 1)
		s.Equal("Last year you uploaded T5 from investment income. Did your situation change?", findings[0].Message)
	})

	s.Run("previous employer is the terminal fallback", func() {
		findings := s.compare(docs("RL1"), nil)
		s.Require().Len(findings, 1)
		s.Equal("Last year you uploaded RL1 from previous employer. Did your situation change?", findings[0].Message)
	})

	s.Run("each missing recurring type gets its own finding", func() {
		findings := s.compare(docs("T4", "T5", "RL1"), docs("T4"))
		s.Len(findings, 2)
	})
}

func (s *YearOverYearSuite) compare(previous, current []DocumentSnapshot) []Finding {
	return compareYearOverYear(s.taxYearID, previous, current, s.now)
}
