package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/period"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
)

// InMemoryPeriodStore implements period.Repository for tests
type InMemoryPeriodStore struct {
	mu      sync.RWMutex
	periods map[string]*period.BillingPeriod
}

func NewInMemoryPeriodStore() *InMemoryPeriodStore {
	return &InMemoryPeriodStore{
		periods: make(map[string]*period.BillingPeriod),
	}
}

func (s *InMemoryPeriodStore) CreateBulk(ctx context.Context, periods []*period.BillingPeriod) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, p := range periods {
		if _, exists := s.periods[p.ID]; exists {
			continue
		}
		copied := *p
		s.periods[p.ID] = &copied
		inserted++
	}
	return inserted, nil
}

func (s *InMemoryPeriodStore) Get(ctx context.Context, id string) (*period.BillingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.periods[id]
	if !ok {
		return nil, ierr.NewError("billing period not found").
			WithHintf("no billing period with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	copied := *p
	return &copied, nil
}

func (s *InMemoryPeriodStore) FindByDate(ctx context.Context, date time.Time) (*period.BillingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.periods {
		if p.Contains(date) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, ierr.NewError("no billing period covers date").
		WithHintf("date %s is outside every generated period", date.Format(time.DateOnly)).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPeriodStore) ListByFiscalYear(ctx context.Context, fiscalYear int) ([]*period.BillingPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*period.BillingPeriod
	for _, p := range s.periods {
		if p.FiscalYear == fiscalYear {
			copied := *p
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

// Count returns the number of stored periods
func (s *InMemoryPeriodStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.periods)
}
