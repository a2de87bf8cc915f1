package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/shiftledger/shiftledger/internal/domain/shift"
)

// InMemoryShiftStore implements shift.Repository for tests. It mimics the
// replacing semantics of the real fact store: an insert with an existing
// (period_id, source_shift_id) key replaces the stored row.
type InMemoryShiftStore struct {
	mu    sync.RWMutex
	facts map[string]*shift.Fact // period_id + ":" + source_shift_id
}

func NewInMemoryShiftStore() *InMemoryShiftStore {
	return &InMemoryShiftStore{
		facts: make(map[string]*shift.Fact),
	}
}

func factKey(periodID, sourceShiftID string) string {
	return periodID + ":" + sourceShiftID
}

func (s *InMemoryShiftStore) BulkInsert(ctx context.Context, facts []*shift.Fact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, f := range facts {
		copied := *f
		s.facts[factKey(f.PeriodID, f.SourceShiftID)] = &copied
	}
	return nil
}

func (s *InMemoryShiftStore) GetByKeys(ctx context.Context, periodID string, sourceShiftIDs []string) (map[string]*shift.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*shift.Fact, len(sourceShiftIDs))
	for _, id := range sourceShiftIDs {
		if f, ok := s.facts[factKey(periodID, id)]; ok {
			copied := *f
			out[id] = &copied
		}
	}
	return out, nil
}

func (s *InMemoryShiftStore) CountByPeriod(ctx context.Context, periodID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, f := range s.facts {
		if f.PeriodID == periodID {
			count++
		}
	}
	return count, nil
}

func (s *InMemoryShiftStore) ListByPeriod(ctx context.Context, periodID string) ([]*shift.Fact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*shift.Fact
	for _, f := range s.facts {
		if f.PeriodID == periodID {
			copied := *f
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceShiftID < out[j].SourceShiftID })
	return out, nil
}

// SetLocked flips the locked flag on a stored fact, used to stage
// locked-row scenarios
func (s *InMemoryShiftStore) SetLocked(periodID, sourceShiftID string, locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f, ok := s.facts[factKey(periodID, sourceShiftID)]; ok {
		f.Locked = locked
	}
}

// Total returns the number of stored facts across all partitions
func (s *InMemoryShiftStore) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.facts)
}
