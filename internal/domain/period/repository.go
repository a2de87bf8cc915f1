package period

import (
	"context"
	"time"
)

// Repository defines the interface for billing period persistence.
// There is deliberately no Update method: periods are immutable once created.
type Repository interface {
	// CreateBulk inserts periods, skipping ids that already exist.
	// Returns the number of rows actually inserted so generation stays
	// observably idempotent.
	CreateBulk(ctx context.Context, periods []*BillingPeriod) (int, error)

	// Get retrieves a period by its natural key
	Get(ctx context.Context, id string) (*BillingPeriod, error)

	// FindByDate returns the period containing the given date, or
	// ErrNotFound when the date is outside every generated period
	FindByDate(ctx context.Context, date time.Time) (*BillingPeriod, error)

	// ListByFiscalYear returns all periods of a fiscal year ordered by sequence
	ListByFiscalYear(ctx context.Context, fiscalYear int) ([]*BillingPeriod, error)
}
