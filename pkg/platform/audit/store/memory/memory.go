package memory

import (
	"context"
	"sync"

	id "taxsync/pkg/domain"
	audit "taxsync/pkg/platform/audit"
)

// InMemoryStore keeps audit events in process memory. Test use only.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.ClientID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.ClientID][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.ClientID][]audit.Event)
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.ClientID] = append(s.events[event.ClientID], event)
	return nil
}

func (s *InMemoryStore) ListByClient(_ context.Context, clientID id.ClientID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[clientID]...), nil
}

// ListAll returns all audit events across all clients.
func (s *InMemoryStore) ListAll(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var allEvents []audit.Event
	for _, clientEvents := range s.events {
		allEvents = append(allEvents, clientEvents...)
	}
	return allEvents, nil
}
