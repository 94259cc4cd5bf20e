package store

import (
	"context"
	"sync"

	"taxsync/internal/validation"
	id "taxsync/pkg/domain"
)

type clientYearKey struct {
	clientID id.ClientID
	year     int
}

// InMemoryStore implements both validation ports against process memory.
// Used by unit tests and the development wiring when Postgres is absent.
type InMemoryStore struct {
	mu           sync.RWMutex
	contexts     map[id.TaxYearID]*validation.TaxYearContext
	byClientYear map[clientYearKey]id.TaxYearID
	findings     map[id.TaxYearID][]validation.StoredFinding
	scores       map[id.TaxYearID]int
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		contexts:     make(map[id.TaxYearID]*validation.TaxYearContext),
		byClientYear: make(map[clientYearKey]id.TaxYearID),
		findings:     make(map[id.TaxYearID][]validation.StoredFinding),
		scores:       make(map[id.TaxYearID]int),
	}
}

// Seed registers a tax year snapshot so subsequent loads can find it.
func (s *InMemoryStore) Seed(snapshot *validation.TaxYearContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[snapshot.TaxYearID] = snapshot
	s.byClientYear[clientYearKey{snapshot.ClientID, snapshot.Year}] = snapshot.TaxYearID
}

func (s *InMemoryStore) LoadTaxYearContext(_ context.Context, taxYearID id.TaxYearID) (*validation.TaxYearContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.contexts[taxYearID]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *snapshot
	return &copied, nil
}

func (s *InMemoryStore) LoadPreviousYearDocuments(_ context.Context, clientID id.ClientID, year int) ([]validation.DocumentSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	taxYearID, ok := s.byClientYear[clientYearKey{clientID, year}]
	if !ok {
		return nil, nil
	}
	snapshot := s.contexts[taxYearID]
	return append([]validation.DocumentSnapshot{}, snapshot.Documents...), nil
}

func (s *InMemoryStore) ReplaceFindings(_ context.Context, taxYearID id.TaxYearID, findings []validation.Finding) error {
	stored := make([]validation.StoredFinding, len(findings))
	for i, f := range findings {
		stored[i] = validation.StoredFinding{
			TaxYearID:      f.TaxYearID,
			RuleCode:       f.RuleCode,
			Status:         f.Status,
			Message:        f.Message,
			MissingDocType: f.MissingDocType,
			CheckedAt:      f.CheckedAt,
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings[taxYearID] = stored
	return nil
}

func (s *InMemoryStore) SetCompletenessScore(_ context.Context, taxYearID id.TaxYearID, score int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[taxYearID] = score
	return nil
}

func (s *InMemoryStore) ListFindings(_ context.Context, taxYearID id.TaxYearID) ([]validation.StoredFinding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]validation.StoredFinding{}, s.findings[taxYearID]...), nil
}

// Score returns the last score written for a tax year. Test helper.
func (s *InMemoryStore) Score(taxYearID id.TaxYearID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores[taxYearID]
}
