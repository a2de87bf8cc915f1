package testutil

import (
	"context"
	"sync"

	"github.com/shiftledger/shiftledger/internal/domain/ledger"
)

// InMemoryLedgerStore implements ledger.Repository for tests
type InMemoryLedgerStore struct {
	mu        sync.RWMutex
	entries   []*ledger.SubmissionEntry
	buildings []*ledger.BuildingMapping
	positions []*ledger.PositionMapping
}

func NewInMemoryLedgerStore() *InMemoryLedgerStore {
	return &InMemoryLedgerStore{}
}

func (s *InMemoryLedgerStore) ReplaceLedger(ctx context.Context, entries []*ledger.SubmissionEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append([]*ledger.SubmissionEntry(nil), entries...)
	return nil
}

func (s *InMemoryLedgerStore) ListLedger(ctx context.Context) ([]*ledger.SubmissionEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*ledger.SubmissionEntry(nil), s.entries...), nil
}

func (s *InMemoryLedgerStore) ReplaceBuildingMappings(ctx context.Context, mappings []*ledger.BuildingMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buildings = append([]*ledger.BuildingMapping(nil), mappings...)
	return nil
}

func (s *InMemoryLedgerStore) ListBuildingMappings(ctx context.Context) ([]*ledger.BuildingMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*ledger.BuildingMapping(nil), s.buildings...), nil
}

func (s *InMemoryLedgerStore) ReplacePositionMappings(ctx context.Context, mappings []*ledger.PositionMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = append([]*ledger.PositionMapping(nil), mappings...)
	return nil
}

func (s *InMemoryLedgerStore) ListPositionMappings(ctx context.Context) ([]*ledger.PositionMapping, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*ledger.PositionMapping(nil), s.positions...), nil
}
