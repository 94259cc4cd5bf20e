package validation

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"taxsync/internal/validation/metrics"
	id "taxsync/pkg/domain"
	"taxsync/pkg/platform/audit"
	"taxsync/pkg/requestcontext"
)

// Service orchestrates one validation run: load the snapshot, evaluate every
// rule category in a fixed order, aggregate the score, persist the new
// finding set (replacing the previous one), and write the score back.
//
// Runs are request-scoped and synchronous. Concurrent runs for the same tax
// year are not coordinated: the last writer's finding set wins.
type Service struct {
	source  SnapshotSource
	store   FindingsStore
	catalog Catalog
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor audit.Emitter
}

// NewService constructs the validation service. The catalog is taken by
// value: it is immutable for the life of the service.
func NewService(source SnapshotSource, store FindingsStore, catalog Catalog, logger *slog.Logger, m *metrics.Metrics, auditor audit.Emitter) *Service {
	return &Service{
		source:  source,
		store:   store,
		catalog: catalog,
		logger:  logger,
		metrics: m,
		auditor: auditor,
	}
}

// Run executes a full validation pass for the tax year.
//
// If the tax year cannot be loaded the run fails fast with no writes. The
// evaluator order (pairing, conditional, income presence, year-over-year)
// matters only for message composition: all findings are pooled before
// aggregation. Persistence replaces the previous finding set; on persistence
// failure the previous set remains and the error propagates.
func (s *Service) Run(ctx context.Context, taxYearID id.TaxYearID) (*Report, error) {
	start := time.Now()
	now := requestcontext.Now(ctx)

	snapshot, err := s.source.LoadTaxYearContext(ctx, taxYearID)
	if err != nil {
		s.metrics.RecordRun("failed", time.Since(start))
		return nil, err
	}

	previousDocs, err := s.source.LoadPreviousYearDocuments(ctx, snapshot.ClientID, snapshot.Year-1)
	if err != nil {
		s.metrics.RecordRun("failed", time.Since(start))
		return nil, err
	}

	findings := evaluatePairing(taxYearID, snapshot.Documents, snapshot.Client, s.catalog.Pairing, now)
	findings = append(findings, evaluateConditional(taxYearID, snapshot.Documents, snapshot.Profile, snapshot.Client, s.catalog.Conditional, now)...)
	findings = append(findings, evaluateIncomePresence(taxYearID, snapshot.Documents, now)...)
	findings = append(findings, compareYearOverYear(taxYearID, previousDocs, snapshot.Documents, now)...)

	score := Aggregate(findings)

	if err := s.store.ReplaceFindings(ctx, taxYearID, findings); err != nil {
		s.metrics.RecordRun("failed", time.Since(start))
		return nil, err
	}
	if err := s.store.SetCompletenessScore(ctx, taxYearID, score); err != nil {
		s.metrics.RecordRun("failed", time.Since(start))
		return nil, err
	}

	s.recordOutcome(ctx, snapshot, findings, score, time.Since(start))

	return &Report{CompletenessScore: score, Findings: findings}, nil
}

func (s *Service) recordOutcome(ctx context.Context, snapshot *TaxYearContext, findings []Finding, score int, elapsed time.Duration) {
	s.metrics.RecordRun("completed", elapsed)
	s.metrics.RecordScore(score)
	for _, f := range findings {
		s.metrics.RecordFinding(string(f.Status))
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "validation run completed",
			"request_id", requestcontext.RequestID(ctx),
			"tax_year_id", snapshot.TaxYearID,
			"year", snapshot.Year,
			"findings", len(findings),
			"score", score,
		)
	}

	if s.auditor != nil {
		err := s.auditor.Emit(ctx, audit.Event{
			ClientID:  snapshot.ClientID,
			Subject:   snapshot.TaxYearID.String(),
			Action:    string(audit.EventValidationRun),
			TaxYear:   snapshot.Year,
			Decision:  strconv.Itoa(score),
			RequestID: requestcontext.RequestID(ctx),
		})
		if err != nil && s.logger != nil {
			// The validation result already persisted; a lost audit event
			// is logged, not fatal.
			s.logger.WarnContext(ctx, "audit emit failed",
				"tax_year_id", snapshot.TaxYearID,
				"error", err,
			)
		}
	}
}
