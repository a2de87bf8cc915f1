package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/dimension"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/types"
)

// InMemoryDimensionStore implements dimension.Repository for tests. Like the
// real store it enforces at most one current version per (entity_type,
// natural_key) and surfaces a violation as ErrOverlapViolation.
type InMemoryDimensionStore struct {
	mu      sync.Mutex
	nextKey int64
	records map[int64]*dimension.Record
}

func NewInMemoryDimensionStore() *InMemoryDimensionStore {
	return &InMemoryDimensionStore{
		nextKey: 1,
		records: make(map[int64]*dimension.Record),
	}
}

func (s *InMemoryDimensionStore) GetCurrent(ctx context.Context, entityType types.EntityType, naturalKey string) (*dimension.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.EntityType == entityType && r.NaturalKey == naturalKey && r.IsCurrent {
			copied := *r
			return &copied, nil
		}
	}
	return nil, ierr.NewError("dimension entity not found").
		WithHintf("no current %s version for key %s", entityType, naturalKey).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryDimensionStore) Insert(ctx context.Context, record *dimension.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.IsCurrent {
		for _, r := range s.records {
			if r.EntityType == record.EntityType && r.NaturalKey == record.NaturalKey && r.IsCurrent {
				return 0, ierr.NewError("duplicate current dimension version").
					WithHintf("a current %s version already exists for key %s", record.EntityType, record.NaturalKey).
					Mark(ierr.ErrOverlapViolation)
			}
		}
	}

	copied := *record
	copied.SurrogateKey = s.nextKey
	copied.Attributes = record.Attributes.Clone()
	s.records[s.nextKey] = &copied
	record.SurrogateKey = s.nextKey
	s.nextKey++
	return copied.SurrogateKey, nil
}

func (s *InMemoryDimensionStore) Close(ctx context.Context, surrogateKey int64, closedAt time.Time, updatedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[surrogateKey]
	if !ok || !r.IsCurrent {
		return ierr.NewError("dimension version already closed").
			WithHintf("surrogate key %d has no open version", surrogateKey).
			Mark(ierr.ErrInvalidOperation)
	}

	closed := closedAt
	r.ValidTo = &closed
	r.IsCurrent = false
	r.UpdatedAt = closedAt
	r.UpdatedBy = updatedBy
	return nil
}

func (s *InMemoryDimensionStore) ListVersions(ctx context.Context, entityType types.EntityType, naturalKey string) ([]*dimension.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*dimension.Record
	for _, r := range s.records {
		if r.EntityType == entityType && r.NaturalKey == naturalKey {
			copied := *r
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ValidFrom.Before(out[j].ValidFrom) })
	return out, nil
}
