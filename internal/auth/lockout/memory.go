package lockout

import (
	"context"
	"sync"
	"time"
)

// InMemory is the single-process fallback used in development and tests.
type InMemory struct {
	mu      sync.Mutex
	records map[string]*Record
}

func NewInMemory() *InMemory {
	return &InMemory{records: make(map[string]*Record)}
}

func copyRecord(r *Record) *Record {
	copied := *r
	if r.LockedUntil != nil {
		until := *r.LockedUntil
		copied.LockedUntil = &until
	}
	return &copied
}

func (s *InMemory) Get(_ context.Context, email string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[email]
	if !ok {
		return nil, nil
	}
	return copyRecord(record), nil
}

func (s *InMemory) RecordFailure(_ context.Context, email string, now time.Time) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[email]
	if !ok {
		record = &Record{Email: email}
		s.records[email] = record
	}
	record.FailureCount++
	record.UpdatedAt = now
	return copyRecord(record), nil
}

func (s *InMemory) Lock(_ context.Context, email string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record, ok := s.records[email]; ok {
		record.LockedUntil = &until
	}
	return nil
}

func (s *InMemory) Clear(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, email)
	return nil
}
