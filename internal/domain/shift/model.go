package shift

import (
	"time"

	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shopspring/decimal"
)

// Record is a normalized shift as produced by the ingestion boundary:
// flat, fully typed, no ambiguous upstream shapes. Only Records reach the
// fact loader.
type Record struct {
	SourceShiftID  string          `json:"source_shift_id"`
	Date           time.Time       `json:"date"`
	Region         string          `json:"region"`
	EmployeeKey    string          `json:"employee_key"`
	PositionCode   string          `json:"position_code"`
	EmployeeName   string          `json:"employee_name,omitempty"`
	PositionName   string          `json:"position_name,omitempty"`
	ScheduledHours decimal.Decimal `json:"scheduled_hours"`
	WorkedHours    decimal.Decimal `json:"worked_hours"`
	ApprovedHours  decimal.Decimal `json:"approved_hours"`
	BillRate       decimal.Decimal `json:"bill_rate"`
	PayRate        decimal.Decimal `json:"pay_rate"`
	Approved       bool            `json:"approved"`
	RawPayload     string          `json:"raw_payload,omitempty"`
}

func (r *Record) Validate() error {
	if r.SourceShiftID == "" {
		return ierr.NewError("missing source shift id").
			Mark(ierr.ErrValidation)
	}
	if r.Date.IsZero() {
		return ierr.NewError("missing shift date").
			WithHintf("shift %s has no date", r.SourceShiftID).
			Mark(ierr.ErrValidation)
	}
	if r.PositionCode == "" {
		return ierr.NewError("missing position code").
			WithHintf("shift %s has no position code", r.SourceShiftID).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Fact is one row of the period-partitioned fact store. Its identity is the
// composite (period_id, source_shift_id); the period is part of the key
// because storage is partitioned by period. Dimension references were
// resolved to current surrogate keys at load time and are never repointed.
type Fact struct {
	PeriodID       string          `json:"period_id"`
	SourceShiftID  string          `json:"source_shift_id"`
	Date           time.Time       `json:"date"`
	Region         string          `json:"region"`
	EmployeeKey    string          `json:"employee_key"`
	PositionCode   string          `json:"position_code"`
	ClientID       string          `json:"client_id"`
	EmployeeSK     int64           `json:"employee_sk"`
	PositionSK     int64           `json:"position_sk"`
	ClientSK       int64           `json:"client_sk"`
	ScheduledHours decimal.Decimal `json:"scheduled_hours"`
	WorkedHours    decimal.Decimal `json:"worked_hours"`
	ApprovedHours  decimal.Decimal `json:"approved_hours"`
	BillableHours  decimal.Decimal `json:"billable_hours"`
	PayableHours   decimal.Decimal `json:"payable_hours"`
	BillRate       decimal.Decimal `json:"bill_rate"`
	PayRate        decimal.Decimal `json:"pay_rate"`
	BillableAmount decimal.Decimal `json:"billable_amount"`
	PayableAmount  decimal.Decimal `json:"payable_amount"`
	Locked         bool            `json:"locked"`
	BatchID        string          `json:"batch_id"`
	RawPayload     string          `json:"raw_payload,omitempty"`
	IngestedAt     time.Time       `json:"ingested_at"`
}

// ComputeMeasures derives the billable/payable measures from the raw hour
// measures. Approved hours drive billing when the shift is approved,
// otherwise worked hours do; pay always follows worked hours.
func (f *Fact) ComputeMeasures() {
	f.BillableHours = f.WorkedHours
	if f.ApprovedHours.IsPositive() {
		f.BillableHours = f.ApprovedHours
	}
	f.PayableHours = f.WorkedHours
	f.BillableAmount = f.BillableHours.Mul(f.BillRate)
	f.PayableAmount = f.PayableHours.Mul(f.PayRate)
}

func (f *Fact) Validate() error {
	if f.PeriodID == "" || f.SourceShiftID == "" {
		return ierr.NewError("missing fact identity").
			WithHint("fact rows are keyed by (period_id, source_shift_id)").
			Mark(ierr.ErrValidation)
	}
	if f.ClientID == "" {
		// The non-null client invariant: unattributable facts are rejected
		// to data quality, never inserted.
		return ierr.NewError("fact without resolvable client").
			WithHintf("shift %s resolved no owning client", f.SourceShiftID).
			Mark(ierr.ErrValidation)
	}
	return nil
}
