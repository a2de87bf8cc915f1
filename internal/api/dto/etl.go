package dto

import (
	"time"

	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/types"
	"github.com/shiftledger/shiftledger/internal/validator"
)

// IngestRequest starts an ingestion run over a date window
type IngestRequest struct {
	Regions   []string `json:"regions" validate:"required,min=1"`
	StartDate string   `json:"start_date" validate:"required"`
	EndDate   string   `json:"end_date" validate:"required"`
}

func (r *IngestRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ParseWindow returns the requested window as a date range
func (r *IngestRequest) ParseWindow() (types.DateRange, error) {
	start, err := time.ParseInLocation(time.DateOnly, r.StartDate, time.UTC)
	if err != nil {
		return types.DateRange{}, ierr.WithError(err).
			WithHintf("start_date %q is not a valid YYYY-MM-DD date", r.StartDate).
			Mark(ierr.ErrValidation)
	}
	end, err := time.ParseInLocation(time.DateOnly, r.EndDate, time.UTC)
	if err != nil {
		return types.DateRange{}, ierr.WithError(err).
			WithHintf("end_date %q is not a valid YYYY-MM-DD date", r.EndDate).
			Mark(ierr.ErrValidation)
	}

	window := types.NewDateRange(start, end)
	if err := window.Validate(); err != nil {
		return types.DateRange{}, ierr.WithError(err).
			WithHint("Requested window is invalid").
			Mark(ierr.ErrValidation)
	}
	return window, nil
}
