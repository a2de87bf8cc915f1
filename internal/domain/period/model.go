package period

import (
	"fmt"
	"time"

	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/types"
)

// BillingPeriod is a fixed 14-day accounting window. Periods partition the
// fact store and drive the recurring billing cycle. Once generated they are
// immutable configuration: no update path exists anywhere in the codebase,
// and correcting a boundary is an out-of-band operator migration.
type BillingPeriod struct {
	ID          string    `db:"id" json:"id"`
	FiscalYear  int       `db:"fiscal_year" json:"fiscal_year"`
	Sequence    int       `db:"sequence" json:"sequence"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"` // inclusive
	BatchID     string    `db:"batch_id" json:"batch_id"`
	types.BaseModel
}

// FormatID builds the natural key for a period, e.g. "FY2025-P07"
func FormatID(fiscalYear, sequence int) string {
	return fmt.Sprintf("FY%d-P%02d", fiscalYear, sequence)
}

// Contains reports whether d falls within the period, bounds inclusive
func (p *BillingPeriod) Contains(d time.Time) bool {
	d = types.BeginningOfDay(d)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

func (p *BillingPeriod) Validate() error {
	if p.Sequence < 1 {
		return ierr.NewError("invalid period sequence").
			WithHintf("sequence must be positive, got %d", p.Sequence).
			Mark(ierr.ErrValidation)
	}
	if !p.EndDate.After(p.StartDate) {
		return ierr.NewError("invalid period bounds").
			WithHintf("period %s ends on or before it starts", p.ID).
			Mark(ierr.ErrValidation)
	}
	return nil
}
