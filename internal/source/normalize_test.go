package source

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftledger/shiftledger/internal/types"
)

func validRawShift() *RawShift {
	return &RawShift{
		ID:             FlexID{Value: "900123"},
		Date:           "2025-01-06",
		Region:         "east",
		Employee:       FlexID{Value: "55", Name: "Ada Lovelace"},
		Position:       FlexID{Value: "pos-42", Name: "Gate Guard"},
		ScheduledHours: FlexNumber{Value: decimal.NewFromInt(8), Set: true},
		WorkedHours:    FlexNumber{Value: decimal.NewFromFloat(7.5), Set: true},
		ApprovedHours:  FlexNumber{Value: decimal.NewFromInt(8), Set: true},
		BillRate:       FlexNumber{Value: decimal.NewFromInt(40), Set: true},
		PayRate:        FlexNumber{Value: decimal.NewFromInt(25), Set: true},
		Approved:       true,
	}
}

func TestNormalizeShiftsFlattensValidRecords(t *testing.T) {
	records, issues := NormalizeShifts([]*RawShift{validRawShift()})
	require.Len(t, records, 1)
	assert.Empty(t, issues)

	record := records[0]
	assert.Equal(t, "900123", record.SourceShiftID)
	assert.True(t, record.Date.Equal(time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "55", record.EmployeeKey)
	assert.Equal(t, "pos-42", record.PositionCode)
	assert.True(t, record.WorkedHours.Equal(decimal.NewFromFloat(7.5)))
	assert.True(t, record.Approved)
	assert.NotEmpty(t, record.RawPayload)
}

func TestNormalizeShiftNameFallbacks(t *testing.T) {
	raw := validRawShift()
	raw.EmployeeName = ""
	raw.PositionName = ""

	records, issues := NormalizeShifts([]*RawShift{raw})
	require.Len(t, records, 1)
	require.Empty(t, issues)

	// Names fall back to what the nested upstream objects carried
	assert.Equal(t, "Ada Lovelace", records[0].EmployeeName)
	assert.Equal(t, "Gate Guard", records[0].PositionName)

	explicit := validRawShift()
	explicit.EmployeeName = "A. Lovelace"
	records, _ = NormalizeShifts([]*RawShift{explicit})
	require.Len(t, records, 1)
	assert.Equal(t, "A. Lovelace", records[0].EmployeeName)
}

func TestNormalizeShiftsRejectsMalformedRecords(t *testing.T) {
	noID := validRawShift()
	noID.ID = FlexID{}

	noEmployee := validRawShift()
	noEmployee.ID = FlexID{Value: "900124"}
	noEmployee.Employee = FlexID{}

	noPosition := validRawShift()
	noPosition.ID = FlexID{Value: "900125"}
	noPosition.Position = FlexID{}

	badDate := validRawShift()
	badDate.ID = FlexID{Value: "900126"}
	badDate.Date = "06/01/2025"

	records, issues := NormalizeShifts([]*RawShift{
		validRawShift(), noID, noEmployee, noPosition, badDate,
	})
	assert.Len(t, records, 1)
	require.Len(t, issues, 4)

	for _, issue := range issues {
		assert.Equal(t, types.IssueTypeMalformedRecord, issue.IssueType)
		assert.NotEmpty(t, issue.Description)
		assert.NotEmpty(t, issue.Payload)
	}

	// The record id travels with the issue even when other fields are broken
	assert.Equal(t, "900124", issues[1].RecordID)
	assert.Equal(t, "900126", issues[3].RecordID)
}

func TestNormalizeShiftsEmptyInput(t *testing.T) {
	records, issues := NormalizeShifts(nil)
	assert.Empty(t, records)
	assert.Empty(t, issues)
}
