package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "taxsync/pkg/domain"
)

// =============================================================================
// Rule Evaluator Test Suite
// =============================================================================
// Justification for unit tests: the evaluators are pure functions carrying the
// jurisdiction gating, trigger predicates, and message composition rules. They
// are far cheaper to exercise exhaustively here than through HTTP round trips.

type EvaluatorSuite struct {
	suite.Suite
	taxYearID id.TaxYearID
	now       time.Time
	catalog   Catalog
}

func TestEvaluatorSuite(t *testing.T) {
	suite.Run(t, new(EvaluatorSuite))
}

func (s *EvaluatorSuite) SetupTest() {
	s.taxYearID = id.NewTaxYearID()
	s.now = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	s.catalog = DefaultCatalog()
}

func (s *EvaluatorSuite) quebecClient() ClientContext {
	return ClientContext{ID: id.NewClientID(), Province: ProvinceQuebec}
}

func (s *EvaluatorSuite) ontarioClient() ClientContext {
	return ClientContext{ID: id.NewClientID(), Province: "ON"}
}

func docs(types ...string) []DocumentSnapshot {
	out := make([]DocumentSnapshot, len(types))
	for i, t := range types {
		out[i] = DocumentSnapshot{ID: id.NewDocumentID(), DocType: t}
	}
	return out
}

func findingByCode(findings []Finding, code string) (Finding, bool) {
	for _, f := range findings {
		if f.RuleCode == code {
			return f, true
		}
	}
	return Finding{}, false
}

// =============================================================================
// Pairing Tests
// =============================================================================

func (s *EvaluatorSuite) TestPairing() {
	s.Run("non-quebec client bypasses all pairing rules", func() {
		findings := evaluatePairing(s.taxYearID, docs("T4", "T5", "T3"), s.ontarioClient(), s.catalog.Pairing, s.now)
		s.Empty(findings)
	})

	s.Run("federal without provincial fails naming the missing type", func() {
		findings := evaluatePairing(s.taxYearID, docs("T4"), s.quebecClient(), s.catalog.Pairing, s.now)
		s.Require().Len(findings, 1)
		s.Equal("QUEBEC_T4_RL1_PAIR", findings[0].RuleCode)
		s.Equal(StatusFail, findings[0].Status)
		s.Equal(SeverityError, findings[0].Severity)
		s.Equal("RL1", findings[0].MissingDocType)
		s.Equal("Missing RL1 for unknown employer. Quebec residents must have matching provincial slip.", findings[0].Message)
	})

	s.Run("employer name from extracted data appears in the message", func() {
		documents := []DocumentSnapshot{{
			ID:            id.NewDocumentID(),
			DocType:       "T4",
			ExtractedData: map[string]any{"employer_name": "Acme Corp"},
		}}
		findings := evaluatePairing(s.taxYearID, documents, s.quebecClient(), s.catalog.Pairing, s.now)
		s.Require().Len(findings, 1)
		s.Equal("Missing RL1 for Acme Corp. Quebec residents must have matching provincial slip.", findings[0].Message)
	})

	s.Run("payer name is the fallback when employer name is absent", func() {
		documents := []DocumentSnapshot{{
			ID:            id.NewDocumentID(),
			DocType:       "T5",
			ExtractedData: map[string]any{"payer_name": "Desjardins"},
		}}
		findings := evaluatePairing(s.taxYearID, documents, s.quebecClient(), s.catalog.Pairing, s.now)
		s.Require().Len(findings, 1)
		s.Equal("QUEBEC_T5_RL3_PAIR", findings[0].RuleCode)
		s.Contains(findings[0].Message, "Desjardins")
	})

	s.Run("both slips present passes", func() {
		findings := evaluatePairing(s.taxYearID, docs("T4", "RL1"), s.quebecClient(), s.catalog.Pairing, s.now)
		s.Require().Len(findings, 1)
		s.Equal(StatusPass, findings[0].Status)
		s.Equal("T4 and RL1 pair complete", findings[0].Message)
		s.Empty(findings[0].MissingDocType)
	})

	s.Run("provincial without federal emits nothing", func() {
		findings := evaluatePairing(s.taxYearID, docs("RL1"), s.quebecClient(), s.catalog.Pairing, s.now)
		s.Empty(findings)
	})

	s.Run("duplicate federal slips emit one finding per rule", func() {
		documents := append(docs("T4", "T4"), DocumentSnapshot{ID: id.NewDocumentID(), DocType: "T4"})
		findings := evaluatePairing(s.taxYearID, documents, s.quebecClient(), s.catalog.Pairing, s.now)
		s.Len(findings, 1)
	})

	s.Run("first upload wins for entity extraction", func() {
		documents := []DocumentSnapshot{
			{ID: id.NewDocumentID(), DocType: "T4", ExtractedData: map[string]any{"employer_name": "First Employer"}},
			{ID: id.NewDocumentID(), DocType: "T4", ExtractedData: map[string]any{"employer_name": "Second Employer"}},
		}
		findings := evaluatePairing(s.taxYearID, documents, s.quebecClient(), s.catalog.Pairing, s.now)
		s.Require().Len(findings, 1)
		s.Contains(findings[0].Message, "First Employer")
	})

	s.Run("non-string employer name falls back to unknown employer", func() {
		documents := []DocumentSnapshot{{
			ID:            id.NewDocumentID(),
			DocType:       "T4",
			ExtractedData: map[string]any{"employer_name": 42},
		}}
		findings := evaluatePairing(s.taxYearID, documents, s.quebecClient(), s.catalog.Pairing, s.now)
		s.Require().Len(findings, 1)
		s.Contains(findings[0].Message, "unknown employer")
	})

	s.Run("T4A and T4RSP both resolve against RL2", func() {
		findings := evaluatePairing(s.taxYearID, docs("T4A", "T4RSP", "RL2"), s.quebecClient(), s.catalog.Pairing, s.now)
		s.Require().Len(findings, 2)
		for _, f := range findings {
			s.Equal(StatusPass, f.Status)
		}
	})
}

// =============================================================================
// Conditional Tests
// =============================================================================

func (s *EvaluatorSuite) TestConditional() {
	s.Run("untriggered rules emit nothing", func() {
		findings := evaluateConditional(s.taxYearID, nil, Profile{}, s.ontarioClient(), s.catalog.Conditional, s.now)
		s.Empty(findings)
	})

	s.Run("triggered rule with document present passes", func() {
		profile := Profile{"has_rrsp_contributions": true}
		findings := evaluateConditional(s.taxYearID, docs("RRSP_RECEIPT"), profile, s.ontarioClient(), s.catalog.Conditional, s.now)
		s.Require().Len(findings, 1)
		s.Equal("RRSP_RECEIPT_REQUIRED", findings[0].RuleCode)
		s.Equal(StatusPass, findings[0].Status)
		s.Equal("RRSP_RECEIPT uploaded", findings[0].Message)
	})

	s.Run("triggered rule with document absent fails with the description", func() {
		profile := Profile{"has_rrsp_contributions": true}
		findings := evaluateConditional(s.taxYearID, nil, profile, s.ontarioClient(), s.catalog.Conditional, s.now)
		s.Require().Len(findings, 1)
		s.Equal(StatusFail, findings[0].Status)
		s.Equal(SeverityError, findings[0].Severity)
		s.Equal("RRSP contributions require contribution receipts", findings[0].Message)
		s.Equal("RRSP_RECEIPT", findings[0].MissingDocType)
	})

	s.Run("warning severity rules emit warning status when document is absent", func() {
		profile := Profile{"has_medical_expenses": true}
		findings := evaluateConditional(s.taxYearID, nil, profile, s.ontarioClient(), s.catalog.Conditional, s.now)
		s.Require().Len(findings, 1)
		s.Equal(StatusWarning, findings[0].Status)
		s.Equal(SeverityWarning, findings[0].Severity)
	})

	s.Run("quebec childcare requires RL24 on top of the receipt", func() {
		profile := Profile{"has_childcare_expenses": true}

		quebec := evaluateConditional(s.taxYearID, nil, profile, s.quebecClient(), s.catalog.Conditional, s.now)
		s.Len(quebec, 2)
		_, hasRL24 := findingByCode(quebec, "QUEBEC_CHILDCARE_RL24_REQUIRED")
		s.True(hasRL24)

		ontario := evaluateConditional(s.taxYearID, nil, profile, s.ontarioClient(), s.catalog.Conditional, s.now)
		s.Len(ontario, 1)
		_, hasRL24 = findingByCode(ontario, "QUEBEC_CHILDCARE_RL24_REQUIRED")
		s.False(hasRL24)
	})

	s.Run("non-boolean profile values read as false", func() {
		profile := Profile{"has_rrsp_contributions": "yes", "has_donations": 1}
		findings := evaluateConditional(s.taxYearID, nil, profile, s.ontarioClient(), s.catalog.Conditional, s.now)
		s.Empty(findings)
	})

	s.Run("employment income without T4 fails", func() {
		profile := Profile{"has_employment_income": true}
		findings := evaluateConditional(s.taxYearID, docs("T5"), profile, s.ontarioClient(), s.catalog.Conditional, s.now)
		f, ok := findingByCode(findings, "EMPLOYMENT_T4_REQUIRED")
		s.Require().True(ok)
		s.Equal(StatusFail, f.Status)
		s.Equal("T4", f.MissingDocType)
	})
}

// =============================================================================
// Income Presence Tests
// =============================================================================

func (s *EvaluatorSuite) TestIncomePresence() {
	s.Run("no income documents fails", func() {
		findings := evaluateIncomePresence(s.taxYearID, docs("RRSP_RECEIPT", "DONATION_RECEIPT"), s.now)
		s.Require().Len(findings, 1)
		s.Equal(RuleCodeIncomeSource, findings[0].RuleCode)
		s.Equal(StatusFail, findings[0].Status)
		s.Equal(SeverityError, findings[0].Severity)
		s.Equal("No income documents uploaded (T4, T5, T4A, etc.)", findings[0].Message)
	})

	s.Run("any income slip type passes", func() {
		for _, docType := range []string{"T4", "T4A", "T5", "T3", "T2125"} {
			findings := evaluateIncomePresence(s.taxYearID, docs(docType), s.now)
			s.Require().Len(findings, 1)
			s.Equal(StatusPass, findings[0].Status, docType)
		}
	})

	s.Run("empty tax year fails", func() {
		findings := evaluateIncomePresence(s.taxYearID, nil, s.now)
		s.Require().Len(findings, 1)
		s.Equal(StatusFail, findings[0].Status)
	})
}
