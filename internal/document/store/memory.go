package store

import (
	"context"
	"sort"
	"sync"

	"taxsync/internal/document/models"
	id "taxsync/pkg/domain"
)

// InMemory is the development and test implementation of the document store.
type InMemory struct {
	mu        sync.RWMutex
	documents map[id.DocumentID]*models.Document
}

func NewInMemory() *InMemory {
	return &InMemory{documents: make(map[id.DocumentID]*models.Document)}
}

func copyDocument(d *models.Document) *models.Document {
	copied := *d
	if d.ExtractedData != nil {
		copied.ExtractedData = make(map[string]any, len(d.ExtractedData))
		for k, v := range d.ExtractedData {
			copied.ExtractedData[k] = v
		}
	}
	return &copied
}

func (s *InMemory) Create(ctx context.Context, document *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[document.ID] = copyDocument(document)
	return nil
}

func (s *InMemory) Update(ctx context.Context, document *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[document.ID]; !ok {
		return ErrNotFound
	}
	s.documents[document.ID] = copyDocument(document)
	return nil
}

func (s *InMemory) Delete(ctx context.Context, documentID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[documentID]; !ok {
		return ErrNotFound
	}
	delete(s.documents, documentID)
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	document, ok := s.documents[documentID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDocument(document), nil
}

func (s *InMemory) ListByTaxYear(ctx context.Context, taxYearID id.TaxYearID) ([]*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Document
	for _, document := range s.documents {
		if document.TaxYearID == taxYearID {
			out = append(out, copyDocument(document))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}
