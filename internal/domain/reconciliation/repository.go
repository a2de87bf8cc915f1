package reconciliation

import (
	"context"
)

// Repository persists the resolution audit trail. Audits are append-only;
// reporting reads the table directly.
type Repository interface {
	// CreateBulk appends resolution audits for one index build
	CreateBulk(ctx context.Context, audits []*ResolutionAudit) error

	// ListByRun returns the audits recorded for one run
	ListByRun(ctx context.Context, runID string) ([]*ResolutionAudit, error)
}
