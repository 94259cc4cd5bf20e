package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	clientservice "taxsync/internal/client/service"
	clientstore "taxsync/internal/client/store"
	"taxsync/internal/taxyear/service"
	"taxsync/internal/taxyear/store"
	"taxsync/internal/validation"
	id "taxsync/pkg/domain"
	"taxsync/pkg/testutil"
)

// =============================================================================
// Tax Year Handler Test Suite
// =============================================================================
// Real client and tax year services back the router; only the validation
// engine is stubbed. This keeps the suite focused on routing, status codes,
// and payload shapes.

type stubValidator struct {
	report *validation.Report
	calls  int
}

func (v *stubValidator) Run(context.Context, id.TaxYearID) (*validation.Report, error) {
	v.calls++
	return v.report, nil
}

type emptyFindings struct{}

func (emptyFindings) ListFindings(context.Context, id.TaxYearID) ([]validation.StoredFinding, error) {
	return nil, nil
}

type TaxYearHandlerSuite struct {
	suite.Suite
	router       chi.Router
	validator    *stubValidator
	accountantID id.AccountantID
	clientID     id.ClientID
}

func TestTaxYearHandlerSuite(t *testing.T) {
	suite.Run(t, new(TaxYearHandlerSuite))
}

func (s *TaxYearHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.accountantID = id.NewAccountantID()
	s.validator = &stubValidator{report: &validation.Report{CompletenessScore: 55}}

	clients := clientservice.New(clientstore.NewInMemory())
	client, err := clients.Create(context.Background(), s.accountantID, clientservice.CreateRequest{
		FirstName: "Marie", LastName: "Tremblay",
		Email: "marie@example.com", Province: "QC",
	})
	s.Require().NoError(err)
	s.clientID = client.ID

	svc := service.New(store.NewInMemory(), clients, s.validator, emptyFindings{},
		service.WithLogger(logger))
	h := New(svc, logger)

	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *TaxYearHandlerSuite) open(year int) TaxYearResponse {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost,
		"/clients/"+s.clientID.String()+"/tax-years", OpenTaxYearRequest{Year: year})
	req = testutil.WithAccountantAuth(req, s.accountantID.String())
	rr := testutil.DoRequest(s.router, req)
	s.Require().Contains([]int{http.StatusOK, http.StatusCreated}, rr.Code, rr.Body.String())
	return *testutil.UnmarshalResponse[TaxYearResponse](s.T(), rr)
}

func (s *TaxYearHandlerSuite) transition(taxYearID, action string) *httptest.ResponseRecorder {
	req := testutil.NewRequest(s.T(), http.MethodPost, "/tax-years/"+taxYearID+"/"+action)
	req = testutil.WithAccountantAuth(req, s.accountantID.String())
	return testutil.DoRequest(s.router, req)
}

func (s *TaxYearHandlerSuite) TestOpen() {
	s.Run("opens a draft tax year", func() {
		taxYear := s.open(2025)
		s.Equal(2025, taxYear.Year)
		s.Equal("draft", taxYear.Status)
		s.Equal(s.clientID.String(), taxYear.ClientID)
		s.Nil(taxYear.SubmittedAt)
	})

	s.Run("reopening the same year returns the same record", func() {
		first := s.open(2024)
		second := s.open(2024)
		s.Equal(first.ID, second.ID)
	})

	s.Run("unauthenticated request is rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/clients/"+s.clientID.String()+"/tax-years", OpenTaxYearRequest{Year: 2025})
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
	})

	s.Run("ancient year is rejected before reaching the service", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/clients/"+s.clientID.String()+"/tax-years", OpenTaxYearRequest{Year: 1984})
		req = testutil.WithAccountantAuth(req, s.accountantID.String())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation")
	})

	s.Run("foreign client reads as not found", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPost,
			"/clients/"+s.clientID.String()+"/tax-years", OpenTaxYearRequest{Year: 2025})
		req = testutil.WithAccountantAuth(req, id.NewAccountantID().String())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
	})
}

func (s *TaxYearHandlerSuite) TestList() {
	s.open(2024)
	s.open(2025)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/clients/"+s.clientID.String()+"/tax-years")
	req = testutil.WithAccountantAuth(req, s.accountantID.String())
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
	list := testutil.UnmarshalResponse[ListTaxYearsResponse](s.T(), rr)
	s.Len(list.TaxYears, 2)
}

func (s *TaxYearHandlerSuite) TestUpdateProfile() {
	taxYear := s.open(2025)

	s.Run("saves the profile and returns a fresh report", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut,
			"/tax-years/"+taxYear.ID+"/profile", UpdateProfileRequest{
				Profile: map[string]any{"has_employment_income": true},
			})
		req = testutil.WithAccountantAuth(req, s.accountantID.String())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[ProfileUpdateResponse](s.T(), rr)
		s.Equal(true, resp.TaxYear.Profile["has_employment_income"])
		s.Require().NotNil(resp.Report)
		s.Equal(55, resp.Report.CompletenessScore)
	})

	s.Run("missing profile is rejected", func() {
		req := testutil.NewJSONRequest(s.T(), http.MethodPut,
			"/tax-years/"+taxYear.ID+"/profile", UpdateProfileRequest{})
		req = testutil.WithAccountantAuth(req, s.accountantID.String())
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation")
	})
}

func (s *TaxYearHandlerSuite) TestLifecycle() {
	taxYear := s.open(2025)

	s.Run("submit then review then complete", func() {
		rr := s.transition(taxYear.ID, "submit")
		testutil.AssertStatusOK(s.T(), rr)
		got := testutil.UnmarshalResponse[TaxYearResponse](s.T(), rr)
		s.Equal("submitted", got.Status)
		s.Require().NotNil(got.SubmittedAt, "submission must stamp submitted_at")

		rr = s.transition(taxYear.ID, "review")
		testutil.AssertStatusOK(s.T(), rr)

		rr = s.transition(taxYear.ID, "complete")
		testutil.AssertStatusOK(s.T(), rr)
		got = testutil.UnmarshalResponse[TaxYearResponse](s.T(), rr)
		s.Equal("completed", got.Status)
	})

	s.Run("illegal transition conflicts", func() {
		rr := s.transition(taxYear.ID, "submit")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("archive is terminal", func() {
		rr := s.transition(taxYear.ID, "archive")
		testutil.AssertStatusOK(s.T(), rr)
		rr = s.transition(taxYear.ID, "reopen")
		testutil.AssertStatusAndError(s.T(), rr, http.StatusConflict, "conflict")
	})

	s.Run("reopen returns a submitted year to draft", func() {
		other := s.open(2024)
		rr := s.transition(other.ID, "submit")
		testutil.AssertStatusOK(s.T(), rr)
		rr = s.transition(other.ID, "reopen")
		testutil.AssertStatusOK(s.T(), rr)
		got := testutil.UnmarshalResponse[TaxYearResponse](s.T(), rr)
		s.Equal("draft", got.Status)
	})
}

func (s *TaxYearHandlerSuite) TestCompleteness() {
	taxYear := s.open(2025)

	req := testutil.NewRequest(s.T(), http.MethodGet, "/tax-years/"+taxYear.ID+"/completeness")
	req = testutil.WithAccountantAuth(req, s.accountantID.String())
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[CompletenessResponse](s.T(), rr)
	s.Equal(taxYear.ID, resp.TaxYearID)
	s.NotNil(resp.Findings, "findings must serialize as [] not null")
}
