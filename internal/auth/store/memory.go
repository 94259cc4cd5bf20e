package store

import (
	"context"
	"strings"
	"sync"

	"taxsync/internal/auth/models"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
)

// InMemory is the development and test implementation of the accountant
// store.
type InMemory struct {
	mu          sync.RWMutex
	accountants map[id.AccountantID]*models.Accountant
	byEmail     map[string]id.AccountantID
}

func NewInMemory() *InMemory {
	return &InMemory{
		accountants: make(map[id.AccountantID]*models.Accountant),
		byEmail:     make(map[string]id.AccountantID),
	}
}

func copyAccountant(a *models.Accountant) *models.Accountant {
	copied := *a
	return &copied
}

func (s *InMemory) Create(ctx context.Context, accountant *models.Accountant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(accountant.Email)
	if _, exists := s.byEmail[email]; exists {
		return dErrors.New(dErrors.CodeConflict, "an account with this email already exists")
	}
	s.accountants[accountant.ID] = copyAccountant(accountant)
	s.byEmail[email] = accountant.ID
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, accountantID id.AccountantID) (*models.Accountant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountant, ok := s.accountants[accountantID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyAccountant(accountant), nil
}

func (s *InMemory) FindByEmail(ctx context.Context, email string) (*models.Accountant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	accountantID, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrNotFound
	}
	return copyAccountant(s.accountants[accountantID]), nil
}
