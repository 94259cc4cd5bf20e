package validation

import (
	"context"

	id "taxsync/pkg/domain"
)

// SnapshotSource loads the read-only snapshot a validation run consumes.
// Implementations live under store/; swap with substitutes in tests.
type SnapshotSource interface {
	// LoadTaxYearContext returns the tax year's documents, profile, and
	// owning client's jurisdiction. Returns a not_found coded error when
	// the tax year does not exist.
	LoadTaxYearContext(ctx context.Context, taxYearID id.TaxYearID) (*TaxYearContext, error)

	// LoadPreviousYearDocuments returns the documents of the client's tax
	// year for the given year, or nil when no such tax year exists. A
	// missing prior year is an expected path, not an error.
	LoadPreviousYearDocuments(ctx context.Context, clientID id.ClientID, year int) ([]DocumentSnapshot, error)
}

// FindingsStore persists validation output. ReplaceFindings discards the
// tax year's full previous finding set and writes the new one; Postgres
// implementations do this inside a single transaction so no reader observes
// a tax year with zero findings mid-update.
type FindingsStore interface {
	ReplaceFindings(ctx context.Context, taxYearID id.TaxYearID, findings []Finding) error
	SetCompletenessScore(ctx context.Context, taxYearID id.TaxYearID, score int) error
	ListFindings(ctx context.Context, taxYearID id.TaxYearID) ([]StoredFinding, error)
}
