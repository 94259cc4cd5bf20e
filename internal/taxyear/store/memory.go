package store

import (
	"context"
	"sort"
	"sync"

	"taxsync/internal/taxyear/models"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
)

type clientYearKey struct {
	clientID id.ClientID
	year     int
}

// InMemory is the development and test implementation of the tax year store.
type InMemory struct {
	mu           sync.RWMutex
	byID         map[id.TaxYearID]*models.TaxYear
	byClientYear map[clientYearKey]id.TaxYearID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:         make(map[id.TaxYearID]*models.TaxYear),
		byClientYear: make(map[clientYearKey]id.TaxYearID),
	}
}

func copyTaxYear(t *models.TaxYear) *models.TaxYear {
	copied := *t
	copied.Profile = make(models.Profile, len(t.Profile))
	for k, v := range t.Profile {
		copied.Profile[k] = v
	}
	if t.SubmittedAt != nil {
		submittedAt := *t.SubmittedAt
		copied.SubmittedAt = &submittedAt
	}
	return &copied
}

func (s *InMemory) Create(ctx context.Context, taxYear *models.TaxYear) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := clientYearKey{taxYear.ClientID, taxYear.Year}
	if _, exists := s.byClientYear[key]; exists {
		return dErrors.New(dErrors.CodeConflict, "tax year already exists for this client and year")
	}
	s.byID[taxYear.ID] = copyTaxYear(taxYear)
	s.byClientYear[key] = taxYear.ID
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, taxYearID id.TaxYearID) (*models.TaxYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	taxYear, ok := s.byID[taxYearID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyTaxYear(taxYear), nil
}

func (s *InMemory) FindByClientAndYear(ctx context.Context, clientID id.ClientID, year int) (*models.TaxYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	taxYearID, ok := s.byClientYear[clientYearKey{clientID, year}]
	if !ok {
		return nil, ErrNotFound
	}
	return copyTaxYear(s.byID[taxYearID]), nil
}

func (s *InMemory) Update(ctx context.Context, taxYear *models.TaxYear) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.byID[taxYear.ID]
	if !ok {
		return ErrNotFound
	}
	updated := copyTaxYear(taxYear)
	// The score column is owned by the validation engine; keep whatever it
	// last wrote.
	updated.CompletenessScore = existing.CompletenessScore
	s.byID[taxYear.ID] = updated
	return nil
}

// SetScore mirrors the validation engine's score write for tests.
func (s *InMemory) SetScore(taxYearID id.TaxYearID, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if taxYear, ok := s.byID[taxYearID]; ok {
		taxYear.CompletenessScore = score
	}
}

func (s *InMemory) ListByClient(ctx context.Context, clientID id.ClientID) ([]*models.TaxYear, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.TaxYear
	for _, taxYear := range s.byID {
		if taxYear.ClientID == clientID {
			out = append(out, copyTaxYear(taxYear))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}
