package source

import (
	"fmt"
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/shift"
	"github.com/shiftledger/shiftledger/internal/types"
)

// NormalizationIssue describes one raw record that could not be normalized.
// The caller records these with the Data Quality Collector under the active
// batch; normalization itself never drops anything silently.
type NormalizationIssue struct {
	RecordID    string
	IssueType   types.IssueType
	Description string
	Payload     string
}

// NormalizeShifts flattens raw upstream shifts into typed records. Ambiguous
// upstream shapes stop here: everything past this point is flat and typed.
func NormalizeShifts(raws []*RawShift) ([]*shift.Record, []NormalizationIssue) {
	records := make([]*shift.Record, 0, len(raws))
	var issues []NormalizationIssue

	for _, raw := range raws {
		record, err := normalizeShift(raw)
		if err != nil {
			payload, _ := json.Marshal(raw)
			issues = append(issues, NormalizationIssue{
				RecordID:    raw.ID.String(),
				IssueType:   types.IssueTypeMalformedRecord,
				Description: err.Error(),
				Payload:     string(payload),
			})
			continue
		}
		records = append(records, record)
	}

	return records, issues
}

func normalizeShift(raw *RawShift) (*shift.Record, error) {
	if raw.ID.IsZero() {
		return nil, fmt.Errorf("shift without id")
	}
	if raw.Employee.IsZero() {
		return nil, fmt.Errorf("shift %s without employee", raw.ID)
	}
	if raw.Position.IsZero() {
		return nil, fmt.Errorf("shift %s without position", raw.ID)
	}

	date, err := time.ParseInLocation(ShiftDateLayout, raw.Date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("shift %s has unparseable date %q", raw.ID, raw.Date)
	}

	payload, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("shift %s payload not serializable: %v", raw.ID, err)
	}

	employeeName := raw.EmployeeName
	if employeeName == "" {
		employeeName = raw.Employee.Name
	}
	positionName := raw.PositionName
	if positionName == "" {
		positionName = raw.Position.Name
	}

	return &shift.Record{
		SourceShiftID:  raw.ID.String(),
		Date:           types.BeginningOfDay(date),
		Region:         raw.Region,
		EmployeeKey:    raw.Employee.String(),
		PositionCode:   raw.Position.String(),
		EmployeeName:   employeeName,
		PositionName:   positionName,
		ScheduledHours: raw.ScheduledHours.Decimal(),
		WorkedHours:    raw.WorkedHours.Decimal(),
		ApprovedHours:  raw.ApprovedHours.Decimal(),
		BillRate:       raw.BillRate.Decimal(),
		PayRate:        raw.PayRate.Decimal(),
		Approved:       raw.Approved,
		RawPayload:     string(payload),
	}, nil
}
