package testutil

import (
	"context"
	"sync"

	"github.com/shiftledger/shiftledger/internal/domain/dataquality"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
)

// InMemoryDataQualityStore implements dataquality.Repository for tests.
// FailWrites simulates a storage outage so the fatal-on-write-failure
// posture can be exercised.
type InMemoryDataQualityStore struct {
	mu         sync.RWMutex
	records    []*dataquality.Record
	FailWrites bool
}

func NewInMemoryDataQualityStore() *InMemoryDataQualityStore {
	return &InMemoryDataQualityStore{}
}

func (s *InMemoryDataQualityStore) Create(ctx context.Context, record *dataquality.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return ierr.NewError("data quality store unavailable").
			Mark(ierr.ErrDatabase)
	}
	copied := *record
	s.records = append(s.records, &copied)
	return nil
}

func (s *InMemoryDataQualityStore) ListByBatch(ctx context.Context, batchID string) ([]*dataquality.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*dataquality.Record
	for _, r := range s.records {
		if r.BatchID == batchID {
			copied := *r
			out = append(out, &copied)
		}
	}
	return out, nil
}

// All returns every stored record regardless of batch
func (s *InMemoryDataQualityStore) All() []*dataquality.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*dataquality.Record(nil), s.records...)
}
