// Package service orchestrates the tax year lifecycle: lazy creation,
// profile updates, submission, and review transitions. Every mutation that
// changes what the rules engine would see triggers a revalidation.
package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	clientmodels "taxsync/internal/client/models"
	"taxsync/internal/taxyear/metrics"
	"taxsync/internal/taxyear/models"
	"taxsync/internal/taxyear/ports"
	"taxsync/internal/taxyear/store"
	"taxsync/internal/validation"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
	"taxsync/pkg/platform/audit"
	"taxsync/pkg/requestcontext"
)

// TaxYearStore is the persistence port for tax years.
type TaxYearStore interface {
	Create(ctx context.Context, taxYear *models.TaxYear) error
	FindByID(ctx context.Context, taxYearID id.TaxYearID) (*models.TaxYear, error)
	FindByClientAndYear(ctx context.Context, clientID id.ClientID, year int) (*models.TaxYear, error)
	Update(ctx context.Context, taxYear *models.TaxYear) error
	ListByClient(ctx context.Context, clientID id.ClientID) ([]*models.TaxYear, error)
}

// ClientDirectory resolves and gates clients. Implemented by the client
// service; lookups are accountant-scoped so this doubles as the tenancy
// check.
type ClientDirectory interface {
	Get(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID) (*clientmodels.Client, error)
	RequireActive(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID) (*clientmodels.Client, error)
}

// Validator runs the completeness rules engine for a tax year.
type Validator interface {
	Run(ctx context.Context, taxYearID id.TaxYearID) (*validation.Report, error)
}

// FindingsReader lists the stored findings of the last validation run.
type FindingsReader interface {
	ListFindings(ctx context.Context, taxYearID id.TaxYearID) ([]validation.StoredFinding, error)
}

// Service orchestrates tax year management.
type Service struct {
	taxYears TaxYearStore
	clients  ClientDirectory
	validate Validator
	findings FindingsReader
	notifier ports.Notifier
	logger   *slog.Logger
	auditor  audit.Emitter
	metrics  *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditor(auditor audit.Emitter) Option {
	return func(s *Service) { s.auditor = auditor }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithNotifier(notifier ports.Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// New constructs a Service.
func New(taxYears TaxYearStore, clients ClientDirectory, validate Validator, findings FindingsReader, opts ...Option) *Service {
	s := &Service{
		taxYears: taxYears,
		clients:  clients,
		validate: validate,
		findings: findings,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the client's tax year for the given calendar year,
// creating a draft with an empty profile on first access. Lost creation races
// fall back to the winner's row.
func (s *Service) GetOrCreate(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID, year int) (*models.TaxYear, error) {
	if _, err := s.clients.RequireActive(ctx, accountantID, clientID); err != nil {
		return nil, err
	}
	if !models.ValidYear(year, requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeValidation, "year is out of range")
	}

	taxYear, err := s.taxYears.FindByClientAndYear(ctx, clientID, year)
	if err == nil {
		return taxYear, nil
	}
	if !errors.Is(err, store.ErrNotFound) && !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tax year")
	}

	created, err := models.NewTaxYear(id.NewTaxYearID(), clientID, year, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.taxYears.Create(ctx, created); err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return s.taxYears.FindByClientAndYear(ctx, clientID, year)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create tax year")
	}

	s.metrics.RecordCreated()
	if s.logger != nil {
		s.logger.InfoContext(ctx, "tax year created",
			"request_id", requestcontext.RequestID(ctx),
			"tax_year_id", created.ID,
			"client_id", clientID,
			"year", year,
		)
	}
	return created, nil
}

// Get returns the tax year after checking the accountant owns its client.
func (s *Service) Get(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error) {
	return s.authorize(ctx, accountantID, taxYearID)
}

// List returns the client's tax years, newest first.
func (s *Service) List(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID) ([]*models.TaxYear, error) {
	if _, err := s.clients.Get(ctx, accountantID, clientID); err != nil {
		return nil, err
	}
	taxYears, err := s.taxYears.ListByClient(ctx, clientID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tax years")
	}
	return taxYears, nil
}

// UpdateProfile replaces the self-reported profile and revalidates. The
// returned report reflects the new profile; a validator failure after the
// profile persisted is logged and returns a nil report rather than unwinding
// the save.
func (s *Service) UpdateProfile(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID, profile models.Profile) (*models.TaxYear, *validation.Report, error) {
	taxYear, err := s.authorize(ctx, accountantID, taxYearID)
	if err != nil {
		return nil, nil, err
	}
	if err := taxYear.RequireMutable(); err != nil {
		return nil, nil, err
	}

	if profile == nil {
		profile = models.Profile{}
	}
	taxYear.Profile = profile
	taxYear.UpdatedAt = requestcontext.Now(ctx)
	if err := s.taxYears.Update(ctx, taxYear); err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save profile")
	}

	s.emitAudit(ctx, audit.EventProfileUpdated, taxYear, "")
	report := s.revalidate(ctx, taxYear)
	if report != nil {
		taxYear.CompletenessScore = report.CompletenessScore
	}
	return taxYear, report, nil
}

// Submit freezes the draft and hands it to the accountant for review. The
// rules engine runs first so the submission carries a current score; the
// notification is best effort.
func (s *Service) Submit(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error) {
	taxYear, err := s.authorize(ctx, accountantID, taxYearID)
	if err != nil {
		return nil, err
	}

	if report := s.revalidate(ctx, taxYear); report != nil {
		taxYear.CompletenessScore = report.CompletenessScore
	}

	if err := s.transition(ctx, taxYear, models.StatusSubmitted); err != nil {
		return nil, err
	}
	s.emitAudit(ctx, audit.EventTaxYearSubmitted, taxYear, "")

	if s.notifier != nil {
		client, clientErr := s.clients.Get(ctx, accountantID, taxYear.ClientID)
		name := ""
		if clientErr == nil {
			name = client.FullName()
		}
		err := s.notifier.NotifySubmission(ctx, ports.SubmissionNotice{
			TaxYearID:         taxYear.ID,
			ClientID:          taxYear.ClientID,
			ClientName:        name,
			Year:              taxYear.Year,
			CompletenessScore: taxYear.CompletenessScore,
		})
		if err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "submission notification failed",
				"tax_year_id", taxYear.ID,
				"error", err,
			)
		}
	}
	return taxYear, nil
}

// StartReview moves a submitted year into review.
func (s *Service) StartReview(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error) {
	taxYear, err := s.authorize(ctx, accountantID, taxYearID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, taxYear, models.StatusInReview); err != nil {
		return nil, err
	}
	return taxYear, nil
}

// Complete finishes the review.
func (s *Service) Complete(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error) {
	taxYear, err := s.authorize(ctx, accountantID, taxYearID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, taxYear, models.StatusCompleted); err != nil {
		return nil, err
	}
	s.emitAudit(ctx, audit.EventReviewCompleted, taxYear, "")
	return taxYear, nil
}

// Reopen sends a submitted or in-review year back to draft so the client can
// add documents.
func (s *Service) Reopen(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error) {
	taxYear, err := s.authorize(ctx, accountantID, taxYearID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, taxYear, models.StatusDraft); err != nil {
		return nil, err
	}
	return taxYear, nil
}

// Archive retires a completed year.
func (s *Service) Archive(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error) {
	taxYear, err := s.authorize(ctx, accountantID, taxYearID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, taxYear, models.StatusArchived); err != nil {
		return nil, err
	}
	return taxYear, nil
}

// CompletenessView is the score plus the findings behind it.
type CompletenessView struct {
	TaxYearID         id.TaxYearID
	CompletenessScore int
	Findings          []validation.StoredFinding
}

// GetCompleteness returns the last computed score and finding set without
// re-running the engine. The tax year row and the findings load in parallel.
func (s *Service) GetCompleteness(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*CompletenessView, error) {
	var (
		taxYear  *models.TaxYear
		findings []validation.StoredFinding
	)

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		taxYear, err = s.authorize(groupCtx, accountantID, taxYearID)
		return err
	})
	g.Go(func() error {
		var err error
		findings, err = s.findings.ListFindings(groupCtx, taxYearID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load findings")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &CompletenessView{
		TaxYearID:         taxYearID,
		CompletenessScore: taxYear.CompletenessScore,
		Findings:          findings,
	}, nil
}

// Revalidate re-runs the rules engine after a document change. Used by the
// document service; errors surface to the caller there.
func (s *Service) Revalidate(ctx context.Context, taxYearID id.TaxYearID) (*validation.Report, error) {
	return s.validate.Run(ctx, taxYearID)
}

// AuthorizeTaxYear reports whether the accountant may touch the tax year.
// Foreign tax years read as not_found so existence does not leak across
// accountants.
func (s *Service) AuthorizeTaxYear(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) error {
	_, err := s.authorize(ctx, accountantID, taxYearID)
	return err
}

func (s *Service) authorize(ctx context.Context, accountantID id.AccountantID, taxYearID id.TaxYearID) (*models.TaxYear, error) {
	taxYear, err := s.taxYears.FindByID(ctx, taxYearID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "tax year not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tax year")
	}
	if _, err := s.clients.Get(ctx, accountantID, taxYear.ClientID); err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "tax year not found")
	}
	return taxYear, nil
}

func (s *Service) transition(ctx context.Context, taxYear *models.TaxYear, target models.Status) error {
	if err := taxYear.Transition(target, requestcontext.Now(ctx)); err != nil {
		return err
	}
	if err := s.taxYears.Update(ctx, taxYear); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save tax year")
	}
	s.metrics.RecordTransition(string(target))
	return nil
}

func (s *Service) revalidate(ctx context.Context, taxYear *models.TaxYear) *validation.Report {
	report, err := s.validate.Run(ctx, taxYear.ID)
	if err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "revalidation failed",
				"tax_year_id", taxYear.ID,
				"error", err,
			)
		}
		return nil
	}
	return report
}

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, taxYear *models.TaxYear, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		ClientID:  taxYear.ClientID,
		Subject:   taxYear.ID.String(),
		Action:    string(action),
		TaxYear:   taxYear.Year,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"tax_year_id", taxYear.ID,
			"action", action,
			"error", err,
		)
	}
}
