package batchrun

import (
	"context"
)

// Repository defines the interface for batch run persistence
type Repository interface {
	// Create inserts a new run in the running state
	Create(ctx context.Context, run *Run) error

	// Update persists counter and state changes
	Update(ctx context.Context, run *Run) error

	// Get retrieves a run by id
	Get(ctx context.Context, id string) (*Run, error)

	// List returns runs ordered by start time, newest first
	List(ctx context.Context, limit int) ([]*Run, error)
}
