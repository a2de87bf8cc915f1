package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/shiftledger/shiftledger/internal/domain/batchrun"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
)

// InMemoryBatchRunStore implements batchrun.Repository for tests
type InMemoryBatchRunStore struct {
	mu   sync.RWMutex
	runs map[string]*batchrun.Run
}

func NewInMemoryBatchRunStore() *InMemoryBatchRunStore {
	return &InMemoryBatchRunStore{
		runs: make(map[string]*batchrun.Run),
	}
}

func (s *InMemoryBatchRunStore) Create(ctx context.Context, run *batchrun.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return ierr.NewError("batch run already exists").
			WithHintf("run %s already created", run.ID).
			Mark(ierr.ErrAlreadyExists)
	}
	copied := *run
	s.runs[run.ID] = &copied
	return nil
}

func (s *InMemoryBatchRunStore) Update(ctx context.Context, run *batchrun.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; !exists {
		return ierr.NewError("batch run not found").
			WithHintf("no batch run with id %s", run.ID).
			Mark(ierr.ErrNotFound)
	}
	copied := *run
	s.runs[run.ID] = &copied
	return nil
}

func (s *InMemoryBatchRunStore) Get(ctx context.Context, id string) (*batchrun.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, ierr.NewError("batch run not found").
			WithHintf("no batch run with id %s", id).
			Mark(ierr.ErrNotFound)
	}
	copied := *run
	return &copied, nil
}

func (s *InMemoryBatchRunStore) List(ctx context.Context, limit int) ([]*batchrun.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*batchrun.Run
	for _, run := range s.runs {
		copied := *run
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
