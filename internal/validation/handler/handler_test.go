package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"taxsync/internal/validation"
	validationStore "taxsync/internal/validation/store"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/testutil"
)

// =============================================================================
// Validation Handler Test Suite
// =============================================================================

type allowAllAuthorizer struct {
	store *validationStore.InMemoryStore
}

// AuthorizeTaxYear lets the authenticated accountant through as long as the
// tax year exists. Ownership rejection paths are exercised separately with
// forbiddenAuthorizer.
func (a allowAllAuthorizer) AuthorizeTaxYear(ctx context.Context, _ id.AccountantID, taxYearID id.TaxYearID) error {
	_, err := a.store.LoadTaxYearContext(ctx, taxYearID)
	return err
}

type forbiddenAuthorizer struct{}

func (forbiddenAuthorizer) AuthorizeTaxYear(context.Context, id.AccountantID, id.TaxYearID) error {
	return dErrors.New(dErrors.CodeForbidden, "tax year belongs to another accountant")
}

type HandlerSuite struct {
	suite.Suite
	store        *validationStore.InMemoryStore
	router       chi.Router
	accountantID id.AccountantID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.store = validationStore.NewInMemory()
	s.accountantID = id.NewAccountantID()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := validation.NewService(s.store, s.store, validation.DefaultCatalog(), logger, nil, nil)
	h := New(service, allowAllAuthorizer{s.store}, logger)

	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) seedTaxYear(province string, profile validation.Profile, docTypes ...string) id.TaxYearID {
	documents := make([]validation.DocumentSnapshot, len(docTypes))
	for i, docType := range docTypes {
		documents[i] = validation.DocumentSnapshot{ID: id.NewDocumentID(), DocType: docType}
	}
	clientID := id.NewClientID()
	snapshot := &validation.TaxYearContext{
		TaxYearID: id.NewTaxYearID(),
		ClientID:  clientID,
		Year:      2025,
		Client:    validation.ClientContext{ID: clientID, Province: province},
		Profile:   profile,
		Documents: documents,
	}
	s.store.Seed(snapshot)
	return snapshot.TaxYearID
}

func (s *HandlerSuite) post(taxYearID string, authenticated bool) *RunResponse {
	req := testutil.NewRequest(s.T(), http.MethodPost, "/tax-years/"+taxYearID+"/validations")
	if authenticated {
		req = testutil.WithAccountantAuth(req, s.accountantID.String())
	}
	rr := testutil.DoRequest(s.router, req)
	if rr.Code != http.StatusOK {
		s.T().Logf("unexpected response: %d %s", rr.Code, rr.Body.String())
		return nil
	}
	return testutil.UnmarshalResponse[RunResponse](s.T(), rr)
}

func (s *HandlerSuite) TestHandleRun() {
	s.Run("unauthenticated request is rejected", func() {
		taxYearID := s.seedTaxYear("QC", validation.Profile{})
		req := testutil.NewRequest(s.T(), http.MethodPost, "/tax-years/"+taxYearID.String()+"/validations")
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("malformed tax year id is rejected", func() {
		req := testutil.NewRequest(s.T(), http.MethodPost, "/tax-years/not-a-uuid/validations")
		req = testutil.WithAccountantAuth(req, s.accountantID.String())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatus(s.T(), rr, http.StatusBadRequest)
	})

	s.Run("unknown tax year returns not found", func() {
		req := testutil.NewRequest(s.T(), http.MethodPost, "/tax-years/"+id.NewTaxYearID().String()+"/validations")
		req = testutil.WithAccountantAuth(req, s.accountantID.String())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("run returns the report with score and findings", func() {
		taxYearID := s.seedTaxYear("QC", validation.Profile{"has_employment_income": true}, "T4")
		resp := s.post(taxYearID.String(), true)
		s.Require().NotNil(resp)
		s.Equal(0, resp.CompletenessScore)
		s.Require().Len(resp.Findings, 3)
		for _, f := range resp.Findings {
			s.NotEmpty(f.RuleCode)
			s.NotEmpty(f.Message)
			s.False(f.CheckedAt.Equal(time.Time{}))
		}
	})

	s.Run("complete tax year scores one hundred", func() {
		taxYearID := s.seedTaxYear("QC", validation.Profile{"has_employment_income": true}, "T4", "RL1")
		resp := s.post(taxYearID.String(), true)
		s.Require().NotNil(resp)
		s.Equal(100, resp.CompletenessScore)
	})

	s.Run("empty finding set serializes as an empty array", func() {
		resp := FromReport(&validation.Report{CompletenessScore: 0})
		s.NotNil(resp.Findings)
		s.Empty(resp.Findings)
	})
}

func (s *HandlerSuite) TestOwnership() {
	s.Run("foreign tax year is forbidden", func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		service := validation.NewService(s.store, s.store, validation.DefaultCatalog(), logger, nil, nil)
		h := New(service, forbiddenAuthorizer{}, logger)
		router := chi.NewRouter()
		h.Register(router)

		taxYearID := s.seedTaxYear("QC", validation.Profile{})
		req := testutil.NewRequest(s.T(), http.MethodPost, "/tax-years/"+taxYearID.String()+"/validations")
		req = testutil.WithAccountantAuth(req, s.accountantID.String())
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusForbidden, "forbidden")
	})
}
