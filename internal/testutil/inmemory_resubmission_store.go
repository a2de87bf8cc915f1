package testutil

import (
	"context"
	"sync"

	"github.com/shiftledger/shiftledger/internal/domain/resubmission"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
)

// InMemoryResubmissionStore implements resubmission.Repository for tests
type InMemoryResubmissionStore struct {
	mu      sync.RWMutex
	records map[string]*resubmission.Record // keyed by document id
}

func NewInMemoryResubmissionStore() *InMemoryResubmissionStore {
	return &InMemoryResubmissionStore{
		records: make(map[string]*resubmission.Record),
	}
}

func (s *InMemoryResubmissionStore) GetByDocumentID(ctx context.Context, documentID string) (*resubmission.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[documentID]
	if !ok {
		return nil, ierr.NewError("document not tracked").
			WithHintf("no tracked submission for document %s", documentID).
			Mark(ierr.ErrNotFound)
	}
	copied := *r
	return &copied, nil
}

func (s *InMemoryResubmissionStore) Create(ctx context.Context, record *resubmission.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.DocumentID]; exists {
		return ierr.NewError("document already tracked").
			WithHintf("document %s is already tracked", record.DocumentID).
			Mark(ierr.ErrAlreadyExists)
	}
	copied := *record
	s.records[record.DocumentID] = &copied
	return nil
}

func (s *InMemoryResubmissionStore) Update(ctx context.Context, record *resubmission.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[record.DocumentID]; !exists {
		return ierr.NewError("document not tracked").
			WithHintf("no tracked submission for document %s", record.DocumentID).
			Mark(ierr.ErrNotFound)
	}
	copied := *record
	s.records[record.DocumentID] = &copied
	return nil
}
