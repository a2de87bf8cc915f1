package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/shiftledger/shiftledger/internal/domain/reconciliation"
	"github.com/shiftledger/shiftledger/internal/domain/shift"
	"github.com/shiftledger/shiftledger/internal/testutil"
	"github.com/shiftledger/shiftledger/internal/types"
)

type FactLoaderSuite struct {
	suite.Suite
	ctx     context.Context
	stores  *testStores
	periods PeriodService
	service FactLoaderService
	index   *reconciliation.OwnershipIndex
}

func TestFactLoader(t *testing.T) {
	suite.Run(t, new(FactLoaderSuite))
}

func (s *FactLoaderSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.stores = newTestStores()

	params := newTestParams(s.stores)
	s.periods = NewPeriodService(params)
	dimensions := NewDimensionService(params)
	dataQuality := NewDataQualityService(s.stores.dataQuality, params.Logger)
	s.service = NewFactLoaderService(params, s.periods, dimensions, dataQuality)

	_, err := s.periods.GeneratePeriods(s.ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)

	s.index = reconciliation.NewOwnershipIndex(
		map[string]string{"pos-mapped": "client-a"},
		map[string]string{},
		map[string]string{},
	)
}

func (s *FactLoaderSuite) record(id, position string, date time.Time) *shift.Record {
	return &shift.Record{
		SourceShiftID:  id,
		Date:           date,
		Region:         "east",
		EmployeeKey:    "emp-1",
		PositionCode:   position,
		EmployeeName:   "Ada",
		PositionName:   "Guard",
		ScheduledHours: decimal.NewFromInt(8),
		WorkedHours:    decimal.NewFromFloat(7.5),
		ApprovedHours:  decimal.NewFromInt(8),
		BillRate:       decimal.NewFromInt(40),
		PayRate:        decimal.NewFromInt(25),
		RawPayload:     `{"id":"` + id + `"}`,
	}
}

func (s *FactLoaderSuite) TestUnmappedRecordsRejectedToDataQuality() {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	records := make([]*shift.Record, 0, 40)
	for i := 0; i < 38; i++ {
		records = append(records, s.record(fmt.Sprintf("sh-%03d", i), "pos-mapped", date))
	}
	records = append(records,
		s.record("sh-bad-1", "pos-unmapped", date),
		s.record("sh-bad-2", "pos-unmapped", date),
	)

	result, err := s.service.LoadBatch(s.ctx, records, s.index, "batch-1")
	s.NoError(err)
	s.Equal(38, result.Inserted)
	s.Equal(2, result.Rejected)
	s.Equal(38, s.stores.shifts.Total())

	dq, err := s.stores.dataQuality.ListByBatch(s.ctx, "batch-1")
	s.NoError(err)
	s.Require().Len(dq, 2)
	for _, r := range dq {
		s.Equal(types.IssueTypeUnresolvedOwner, r.IssueType)
		s.Equal("batch-1", r.BatchID)
		s.NotEmpty(r.Payload)
	}
}

func (s *FactLoaderSuite) TestReloadIsIdempotent() {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	records := []*shift.Record{
		s.record("sh-1", "pos-mapped", date),
		s.record("sh-2", "pos-mapped", date),
	}

	first, err := s.service.LoadBatch(s.ctx, records, s.index, "batch-1")
	s.NoError(err)
	s.Equal(2, first.Inserted)

	// Same batch re-delivered: idempotent skips, no growth
	second, err := s.service.LoadBatch(s.ctx, records, s.index, "batch-1")
	s.NoError(err)
	s.Equal(0, second.Inserted)
	s.Equal(2, second.Duplicates)
	s.Equal(2, s.stores.shifts.Total())
}

func (s *FactLoaderSuite) TestDuplicateWithinBatchSkipped() {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	records := []*shift.Record{
		s.record("sh-1", "pos-mapped", date),
		s.record("sh-1", "pos-mapped", date),
	}

	result, err := s.service.LoadBatch(s.ctx, records, s.index, "batch-1")
	s.NoError(err)
	s.Equal(1, result.Inserted)
	s.Equal(1, result.Duplicates)
}

func (s *FactLoaderSuite) TestDifferentBatchOverwrites() {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	records := []*shift.Record{s.record("sh-1", "pos-mapped", date)}

	_, err := s.service.LoadBatch(s.ctx, records, s.index, "batch-1")
	s.NoError(err)

	// A correction arrives in a later batch
	corrected := s.record("sh-1", "pos-mapped", date)
	corrected.WorkedHours = decimal.NewFromInt(6)
	corrected.ApprovedHours = decimal.Zero

	result, err := s.service.LoadBatch(s.ctx, []*shift.Record{corrected}, s.index, "batch-2")
	s.NoError(err)
	s.Equal(1, result.Overwritten)
	s.Equal(0, result.Inserted)

	facts, err := s.stores.shifts.ListByPeriod(s.ctx, "FY2025-P01")
	s.NoError(err)
	s.Require().Len(facts, 1)
	s.Equal("batch-2", facts[0].BatchID)
	s.True(facts[0].BillableHours.Equal(decimal.NewFromInt(6)))
}

func (s *FactLoaderSuite) TestLockedRowsNeverOverwritten() {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := s.service.LoadBatch(s.ctx, []*shift.Record{s.record("sh-1", "pos-mapped", date)}, s.index, "batch-1")
	s.NoError(err)

	s.stores.shifts.SetLocked("FY2025-P01", "sh-1", true)

	result, err := s.service.LoadBatch(s.ctx, []*shift.Record{s.record("sh-1", "pos-mapped", date)}, s.index, "batch-2")
	s.NoError(err)
	s.Equal(1, result.Skipped)
	s.Equal(0, result.Overwritten)

	facts, err := s.stores.shifts.ListByPeriod(s.ctx, "FY2025-P01")
	s.NoError(err)
	s.Equal("batch-1", facts[0].BatchID)
}

func (s *FactLoaderSuite) TestUnresolvablePeriodRejected() {
	outside := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)

	result, err := s.service.LoadBatch(s.ctx, []*shift.Record{s.record("sh-1", "pos-mapped", outside)}, s.index, "batch-1")
	s.NoError(err)
	s.Equal(1, result.Rejected)
	s.Equal(0, s.stores.shifts.Total())

	dq, err := s.stores.dataQuality.ListByBatch(s.ctx, "batch-1")
	s.NoError(err)
	s.Require().Len(dq, 1)
	s.Equal(types.IssueTypeUnresolvedPeriod, dq[0].IssueType)
}

func (s *FactLoaderSuite) TestDataQualityWriteFailureAbortsBatch() {
	s.stores.dataQuality.FailWrites = true

	outside := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.service.LoadBatch(s.ctx, []*shift.Record{s.record("sh-1", "pos-mapped", outside)}, s.index, "batch-1")
	s.Error(err)
}

func (s *FactLoaderSuite) TestDimensionStubsCreatedForNewKeys() {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	_, err := s.service.LoadBatch(s.ctx, []*shift.Record{s.record("sh-1", "pos-mapped", date)}, s.index, "batch-1")
	s.NoError(err)

	employee, err := s.stores.dimensions.GetCurrent(s.ctx, types.EntityTypeEmployee, "emp-1")
	s.NoError(err)
	s.True(employee.IsStub())

	facts, err := s.stores.shifts.ListByPeriod(s.ctx, "FY2025-P01")
	s.NoError(err)
	s.Require().Len(facts, 1)
	s.Equal(employee.SurrogateKey, facts[0].EmployeeSK)
	s.Equal("client-a", facts[0].ClientID)
}

func (s *FactLoaderSuite) TestMeasureDerivation() {
	date := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	// Approved hours drive billing when present
	approved := s.record("sh-1", "pos-mapped", date)
	// Worked hours drive billing when approval is absent
	unapproved := s.record("sh-2", "pos-mapped", date)
	unapproved.ApprovedHours = decimal.Zero

	_, err := s.service.LoadBatch(s.ctx, []*shift.Record{approved, unapproved}, s.index, "batch-1")
	s.NoError(err)

	facts, err := s.stores.shifts.GetByKeys(s.ctx, "FY2025-P01", []string{"sh-1", "sh-2"})
	s.NoError(err)

	s.True(facts["sh-1"].BillableHours.Equal(decimal.NewFromInt(8)))
	s.True(facts["sh-1"].BillableAmount.Equal(decimal.NewFromInt(320)))
	s.True(facts["sh-2"].BillableHours.Equal(decimal.NewFromFloat(7.5)))
	s.True(facts["sh-2"].PayableAmount.Equal(decimal.NewFromFloat(187.5)))
}
