package source

import (
	"context"
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/ledger"
	"github.com/shiftledger/shiftledger/internal/types"
)

// SchedulingSource is the collaborator contract with the external
// scheduling-API client. The client owns HTTP auth, pagination and rate
// limiting; its contract with the core is "return a complete, deduplicated
// record set for the requested window or fail". The requested window never
// exceeds the documented upstream cap; the ingestion runner enforces that
// by decomposing larger ranges first.
type SchedulingSource interface {
	// FetchShifts returns the raw shift records for one region and window
	FetchShifts(ctx context.Context, region string, window types.DateRange) ([]*RawShift, error)

	// FetchEmployees returns the raw employee records for one region
	FetchEmployees(ctx context.Context, region string) ([]*RawEmployee, error)

	// FetchPositions returns the raw position/client records for one region
	FetchPositions(ctx context.Context, region string) ([]*RawPosition, error)
}

// LedgerSource is the collaborator contract with the document-submission
// feed (an EDI export or similar authoritative extract). A fetch returns
// the full current view; the reconciliation engine replaces its prior view
// wholesale.
type LedgerSource interface {
	FetchLedger(ctx context.Context) ([]*ledger.SubmissionEntry, error)
	FetchBuildingMappings(ctx context.Context) ([]*ledger.BuildingMapping, error)
	FetchPositionMappings(ctx context.Context) ([]*ledger.PositionMapping, error)
}

// RawEmployee is an upstream employee record before normalization
type RawEmployee struct {
	ID        FlexID `json:"id"`
	Name      string `json:"name"`
	Region    string `json:"region"`
	Email     string `json:"email,omitempty"`
	Status    string `json:"status,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// RawPosition is an upstream position/client record before normalization
type RawPosition struct {
	ID           FlexID `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	BuildingCode string `json:"building_code,omitempty"`
	Region       string `json:"region"`
}

// RawShift is an upstream shift record before normalization. Upstream field
// shapes are unstable: ids arrive as numbers, strings or nested objects,
// and hour fields as numbers or strings. The FlexID / FlexNumber variant
// types absorb that at the boundary so nothing ambiguous flows further in.
type RawShift struct {
	ID             FlexID     `json:"id"`
	Date           string     `json:"date"`
	Region         string     `json:"region"`
	Employee       FlexID     `json:"employee"`
	Position       FlexID     `json:"position"`
	EmployeeName   string     `json:"employee_name,omitempty"`
	PositionName   string     `json:"position_name,omitempty"`
	ScheduledHours FlexNumber `json:"scheduled_hours"`
	WorkedHours    FlexNumber `json:"worked_hours"`
	ApprovedHours  FlexNumber `json:"approved_hours"`
	BillRate       FlexNumber `json:"bill_rate"`
	PayRate        FlexNumber `json:"pay_rate"`
	Approved       bool       `json:"approved"`
}

// ShiftDateLayout is the wire format of shift dates
const ShiftDateLayout = time.DateOnly
