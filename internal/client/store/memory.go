package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"taxsync/internal/client/models"
	id "taxsync/pkg/domain"
	dErrors "taxsync/pkg/domain-errors"
)

// InMemory is the development and test implementation of the client store.
type InMemory struct {
	mu      sync.RWMutex
	clients map[id.ClientID]*models.Client
}

func NewInMemory() *InMemory {
	return &InMemory{clients: make(map[id.ClientID]*models.Client)}
}

func (s *InMemory) Create(ctx context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.clients {
		if existing.AccountantID == client.AccountantID && strings.EqualFold(existing.Email, client.Email) {
			return dErrors.New(dErrors.CodeConflict, "client email already registered")
		}
	}
	copied := *client
	s.clients[client.ID] = &copied
	return nil
}

func (s *InMemory) Update(ctx context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[client.ID]; !ok {
		return ErrNotFound
	}
	copied := *client
	s.clients[client.ID] = &copied
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, accountantID id.AccountantID, clientID id.ClientID) (*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[clientID]
	if !ok || client.AccountantID != accountantID {
		return nil, ErrNotFound
	}
	copied := *client
	return &copied, nil
}

func (s *InMemory) ListByAccountant(ctx context.Context, accountantID id.AccountantID) ([]*models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Client
	for _, client := range s.clients {
		if client.AccountantID == accountantID {
			copied := *client
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}
