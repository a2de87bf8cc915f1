package shift

import (
	"context"
)

// Repository defines the interface for the period-partitioned fact store.
// Fact writes are scoped to their partition, so concurrent loads into
// different billing periods never contend.
type Repository interface {
	// BulkInsert appends facts; rows replace earlier versions with the
	// same (period_id, source_shift_id) key
	BulkInsert(ctx context.Context, facts []*Fact) error

	// GetByKeys returns the existing facts for the given source shift ids
	// within one partition, keyed by source shift id. Used by the loader
	// for cross-batch duplicate decisions.
	GetByKeys(ctx context.Context, periodID string, sourceShiftIDs []string) (map[string]*Fact, error)

	// CountByPeriod returns the number of facts in one partition
	CountByPeriod(ctx context.Context, periodID string) (int, error)

	// ListByPeriod returns all facts in one partition, newest version per key
	ListByPeriod(ctx context.Context, periodID string) ([]*Fact, error)
}
