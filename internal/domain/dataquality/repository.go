package dataquality

import (
	"context"
)

// Repository is the append-only persistence for data quality records
type Repository interface {
	// Create appends one record
	Create(ctx context.Context, record *Record) error

	// ListByBatch returns records for one batch, used by tests and the
	// post-run summary
	ListByBatch(ctx context.Context, batchID string) ([]*Record, error)
}
