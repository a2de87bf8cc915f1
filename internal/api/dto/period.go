package dto

import (
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/period"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/validator"
)

// GeneratePeriodsRequest asks for the billing periods of one fiscal year
type GeneratePeriodsRequest struct {
	// FiscalYearStart is the first day of the fiscal year, YYYY-MM-DD
	FiscalYearStart string `json:"fiscal_year_start" validate:"required"`
}

func (r *GeneratePeriodsRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ParseStart returns the fiscal year start as a date
func (r *GeneratePeriodsRequest) ParseStart() (time.Time, error) {
	start, err := time.ParseInLocation(time.DateOnly, r.FiscalYearStart, time.UTC)
	if err != nil {
		return time.Time{}, ierr.WithError(err).
			WithHintf("fiscal_year_start %q is not a valid YYYY-MM-DD date", r.FiscalYearStart).
			Mark(ierr.ErrValidation)
	}
	return start, nil
}

// GeneratePeriodsResponse reports what generation did
type GeneratePeriodsResponse struct {
	FiscalYear int                     `json:"fiscal_year"`
	Created    int                     `json:"created"`
	Periods    []*period.BillingPeriod `json:"periods"`
}

// ListPeriodsResponse carries the periods of one fiscal year
type ListPeriodsResponse struct {
	FiscalYear int                     `json:"fiscal_year"`
	Periods    []*period.BillingPeriod `json:"periods"`
}

// ResolvePeriodResponse maps a date to its period id
type ResolvePeriodResponse struct {
	Date     string `json:"date"`
	PeriodID string `json:"period_id"`
}
