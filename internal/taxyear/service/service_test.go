package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	clientservice "taxsync/internal/client/service"
	clientstore "taxsync/internal/client/store"
	"taxsync/internal/taxyear/models"
	"taxsync/internal/taxyear/ports"
	"taxsync/internal/taxyear/store"
	"taxsync/internal/validation"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/platform/audit"
	auditMemory "taxsync/pkg/platform/audit/store/memory"
	"taxsync/pkg/requestcontext"
)

// =============================================================================
// Tax Year Service Test Suite
// =============================================================================
// The validator is stubbed: orchestration (when validation runs, what happens
// when it fails) is what this suite pins down. The engine itself is covered
// in the validation package.

type stubValidator struct {
	report *validation.Report
	err    error
	calls  []id.TaxYearID
}

func (v *stubValidator) Run(_ context.Context, taxYearID id.TaxYearID) (*validation.Report, error) {
	v.calls = append(v.calls, taxYearID)
	if v.err != nil {
		return nil, v.err
	}
	return v.report, nil
}

type stubFindings struct {
	findings []validation.StoredFinding
}

func (f *stubFindings) ListFindings(context.Context, id.TaxYearID) ([]validation.StoredFinding, error) {
	return f.findings, nil
}

type captureNotifier struct {
	notices []ports.SubmissionNotice
	err     error
}

func (n *captureNotifier) NotifySubmission(_ context.Context, notice ports.SubmissionNotice) error {
	n.notices = append(n.notices, notice)
	return n.err
}

type TaxYearServiceSuite struct {
	suite.Suite
	taxYears     *store.InMemory
	clients      *clientservice.Service
	validator    *stubValidator
	findings     *stubFindings
	notifier     *captureNotifier
	audits       *auditMemory.InMemoryStore
	service      *Service
	accountantID id.AccountantID
	clientID     id.ClientID
	ctx          context.Context
}

func TestTaxYearServiceSuite(t *testing.T) {
	suite.Run(t, new(TaxYearServiceSuite))
}

type directEmitter struct{ store audit.Store }

func (e directEmitter) Emit(ctx context.Context, event audit.Event) error {
	return e.store.Append(ctx, event)
}

func (s *TaxYearServiceSuite) SetupTest() {
	s.taxYears = store.NewInMemory()
	s.clients = clientservice.New(clientstore.NewInMemory())
	s.validator = &stubValidator{report: &validation.Report{CompletenessScore: 40}}
	s.findings = &stubFindings{}
	s.notifier = &captureNotifier{}
	s.audits = auditMemory.NewInMemoryStore()
	s.service = New(s.taxYears, s.clients, s.validator, s.findings,
		WithNotifier(s.notifier),
		WithAuditor(directEmitter{s.audits}),
	)
	s.accountantID = id.NewAccountantID()
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))

	client, err := s.clients.Create(s.ctx, s.accountantID, clientservice.CreateRequest{
		FirstName: "Marie", LastName: "Tremblay",
		Email: "marie@example.com", Province: "QC",
	})
	s.Require().NoError(err)
	s.clientID = client.ID
}

func (s *TaxYearServiceSuite) open(year int) *models.TaxYear {
	taxYear, err := s.service.GetOrCreate(s.ctx, s.accountantID, s.clientID, year)
	s.Require().NoError(err)
	return taxYear
}

// =============================================================================
// GetOrCreate Tests
// =============================================================================

func (s *TaxYearServiceSuite) TestGetOrCreate() {
	s.Run("first access creates a draft with an empty profile", func() {
		taxYear := s.open(2025)
		s.Equal(models.StatusDraft, taxYear.Status)
		s.Empty(taxYear.Profile)
		s.Equal(0, taxYear.CompletenessScore)
	})

	s.Run("second access returns the same tax year", func() {
		first := s.open(2024)
		second := s.open(2024)
		s.Equal(first.ID, second.ID)
	})

	s.Run("year outside the window is rejected", func() {
		_, err := s.service.GetOrCreate(s.ctx, s.accountantID, s.clientID, 1999)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))

		_, err = s.service.GetOrCreate(s.ctx, s.accountantID, s.clientID, 2030)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("inactive client cannot open tax years", func() {
		_, err := s.clients.Deactivate(s.ctx, s.accountantID, s.clientID)
		s.Require().NoError(err)
		_, err = s.service.GetOrCreate(s.ctx, s.accountantID, s.clientID, 2025)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("foreign accountant cannot open tax years for the client", func() {
		_, err := s.service.GetOrCreate(s.ctx, id.NewAccountantID(), s.clientID, 2025)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// =============================================================================
// Profile Update Tests
// =============================================================================

func (s *TaxYearServiceSuite) TestUpdateProfile() {
	s.Run("save persists and triggers revalidation", func() {
		taxYear := s.open(2025)
		profile := models.Profile{"has_rrsp_contributions": true}

		updated, report, err := s.service.UpdateProfile(s.ctx, s.accountantID, taxYear.ID, profile)
		s.Require().NoError(err)
		s.True(validation.Profile(updated.Profile).Flag("has_rrsp_contributions"))
		s.Require().NotNil(report)
		s.Equal(40, report.CompletenessScore)
		s.Contains(s.validator.calls, taxYear.ID)

		reloaded, err := s.service.Get(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)
		s.True(validation.Profile(reloaded.Profile).Flag("has_rrsp_contributions"))
	})

	s.Run("validator failure does not unwind the save", func() {
		taxYear := s.open(2024)
		s.validator.err = dErrors.New(dErrors.CodeInternal, "engine down")

		updated, report, err := s.service.UpdateProfile(s.ctx, s.accountantID, taxYear.ID,
			models.Profile{"has_donations": true})
		s.Require().NoError(err)
		s.Nil(report)
		s.True(validation.Profile(updated.Profile).Flag("has_donations"))
		s.validator.err = nil
	})

	s.Run("submitted tax year rejects profile edits", func() {
		taxYear := s.open(2023)
		_, err := s.service.Submit(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)

		_, _, err = s.service.UpdateProfile(s.ctx, s.accountantID, taxYear.ID, models.Profile{})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("profile save is audited", func() {
		s.audits.Clear()
		taxYear := s.open(2022)
		_, _, err := s.service.UpdateProfile(s.ctx, s.accountantID, taxYear.ID, models.Profile{})
		s.Require().NoError(err)

		events, err := s.audits.ListByClient(s.ctx, s.clientID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventProfileUpdated), events[0].Action)
		s.Equal(2022, events[0].TaxYear)
	})
}

// =============================================================================
// Lifecycle Tests
// =============================================================================

func (s *TaxYearServiceSuite) TestLifecycle() {
	s.Run("submit revalidates, transitions, audits, notifies", func() {
		s.audits.Clear()
		taxYear := s.open(2025)

		submitted, err := s.service.Submit(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, submitted.Status)
		s.Equal(40, submitted.CompletenessScore)
		s.Require().NotNil(submitted.SubmittedAt)
		s.Equal(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC), *submitted.SubmittedAt)
		s.Contains(s.validator.calls, taxYear.ID)

		s.Require().Len(s.notifier.notices, 1)
		s.Equal("Marie Tremblay", s.notifier.notices[0].ClientName)
		s.Equal(2025, s.notifier.notices[0].Year)
		s.Equal(40, s.notifier.notices[0].CompletenessScore)

		events, err := s.audits.ListByClient(s.ctx, s.clientID)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(string(audit.EventTaxYearSubmitted), events[0].Action)
	})

	s.Run("notifier failure does not fail the submission", func() {
		taxYear := s.open(2024)
		s.notifier.err = dErrors.New(dErrors.CodeInternal, "smtp down")

		submitted, err := s.service.Submit(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, submitted.Status)
		s.notifier.err = nil
	})

	s.Run("full lifecycle walks draft to archived", func() {
		taxYear := s.open(2023)

		_, err := s.service.Submit(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)
		_, err = s.service.StartReview(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)
		completed, err := s.service.Complete(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, completed.Status)
		archived, err := s.service.Archive(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusArchived, archived.Status)
	})

	s.Run("illegal transitions conflict", func() {
		taxYear := s.open(2022)
		_, err := s.service.Complete(s.ctx, s.accountantID, taxYear.ID)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("reopen returns a submitted year to draft", func() {
		taxYear := s.open(2021)
		_, err := s.service.Submit(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)
		reopened, err := s.service.Reopen(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusDraft, reopened.Status)
		s.NoError(reopened.RequireMutable())
	})

	s.Run("resubmission keeps the original submission timestamp", func() {
		taxYear := s.open(2020)
		submitted, err := s.service.Submit(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)
		s.Require().NotNil(submitted.SubmittedAt)
		firstSubmission := *submitted.SubmittedAt

		_, err = s.service.Reopen(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)

		later := requestcontext.WithTime(context.Background(), time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC))
		resubmitted, err := s.service.Submit(later, s.accountantID, taxYear.ID)
		s.Require().NoError(err)
		s.Require().NotNil(resubmitted.SubmittedAt)
		s.Equal(firstSubmission, *resubmitted.SubmittedAt)
	})
}

// =============================================================================
// Completeness Tests
// =============================================================================

func (s *TaxYearServiceSuite) TestGetCompleteness() {
	s.Run("returns stored score and findings without re-running the engine", func() {
		taxYear := s.open(2025)
		s.taxYears.SetScore(taxYear.ID, 67)
		s.findings.findings = []validation.StoredFinding{
			{TaxYearID: taxYear.ID, RuleCode: "HAS_INCOME_SOURCE", Status: validation.StatusPass, Message: "Income documents present"},
		}
		runsBefore := len(s.validator.calls)

		view, err := s.service.GetCompleteness(s.ctx, s.accountantID, taxYear.ID)
		s.Require().NoError(err)
		s.Equal(67, view.CompletenessScore)
		s.Require().Len(view.Findings, 1)
		s.Equal("HAS_INCOME_SOURCE", view.Findings[0].RuleCode)
		s.Len(s.validator.calls, runsBefore)
	})

	s.Run("foreign tax year reads as not found", func() {
		taxYear := s.open(2024)
		_, err := s.service.GetCompleteness(s.ctx, id.NewAccountantID(), taxYear.ID)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
