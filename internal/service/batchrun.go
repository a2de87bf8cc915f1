package service

import (
	"context"

	"github.com/shiftledger/shiftledger/internal/domain/batchrun"
)

// BatchRunService exposes the post-run summaries, the primary operator
// signal after an ingestion run
type BatchRunService interface {
	// Get returns one run by id
	Get(ctx context.Context, id string) (*batchrun.Run, error)

	// List returns recent runs, newest first
	List(ctx context.Context, limit int) ([]*batchrun.Run, error)
}

type batchRunService struct {
	ServiceParams
}

func NewBatchRunService(params ServiceParams) BatchRunService {
	return &batchRunService{ServiceParams: params}
}

func (s *batchRunService) Get(ctx context.Context, id string) (*batchrun.Run, error) {
	return s.BatchRunRepo.Get(ctx, id)
}

func (s *batchRunService) List(ctx context.Context, limit int) ([]*batchrun.Run, error) {
	return s.BatchRunRepo.List(ctx, limit)
}
