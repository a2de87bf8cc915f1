package dimension

import (
	"context"
	"time"

	"github.com/shiftledger/shiftledger/internal/types"
)

// Repository defines the interface for dimension version persistence.
//
// The store carries a uniqueness constraint on current versions per
// (entity_type, natural_key); Insert surfaces a violation of it as
// ErrOverlapViolation. That constraint is the final arbiter of the
// non-overlap invariant under concurrent writers.
type Repository interface {
	// GetCurrent returns the current version for a natural key, or
	// ErrNotFound when the entity has never been seen or is retired
	GetCurrent(ctx context.Context, entityType types.EntityType, naturalKey string) (*Record, error)

	// Insert persists a new version and returns its surrogate key
	Insert(ctx context.Context, record *Record) (int64, error)

	// Close ends the validity of a version: sets valid_to and clears
	// is_current. Used only inside the upsert transaction.
	Close(ctx context.Context, surrogateKey int64, closedAt time.Time, updatedBy string) error

	// ListVersions returns every version of a natural key ordered by
	// valid_from, used by invariant checks and history consumers
	ListVersions(ctx context.Context, entityType types.EntityType, naturalKey string) ([]*Record, error)
}
