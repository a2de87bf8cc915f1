package testutil

import (
	"context"
	"sync"

	"github.com/shiftledger/shiftledger/internal/domain/reconciliation"
)

// InMemoryAuditStore implements reconciliation.Repository for tests
type InMemoryAuditStore struct {
	mu     sync.RWMutex
	audits []*reconciliation.ResolutionAudit
}

func NewInMemoryAuditStore() *InMemoryAuditStore {
	return &InMemoryAuditStore{}
}

func (s *InMemoryAuditStore) CreateBulk(ctx context.Context, audits []*reconciliation.ResolutionAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, audits...)
	return nil
}

func (s *InMemoryAuditStore) ListByRun(ctx context.Context, runID string) ([]*reconciliation.ResolutionAudit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*reconciliation.ResolutionAudit
	for _, a := range s.audits {
		if a.RunID == runID {
			out = append(out, a)
		}
	}
	return out, nil
}

// All returns every stored audit regardless of run
func (s *InMemoryAuditStore) All() []*reconciliation.ResolutionAudit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*reconciliation.ResolutionAudit(nil), s.audits...)
}
