package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/shiftledger/shiftledger/internal/domain/ledger"
	"github.com/shiftledger/shiftledger/internal/source"
	"github.com/shiftledger/shiftledger/internal/testutil"
	"github.com/shiftledger/shiftledger/internal/types"
)

type IngestionServiceSuite struct {
	suite.Suite
	ctx     context.Context
	stores  *testStores
	service IngestionService
}

func TestIngestionService(t *testing.T) {
	suite.Run(t, new(IngestionServiceSuite))
}

func (s *IngestionServiceSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.stores = newTestStores()

	params := newTestParams(s.stores)
	periods := NewPeriodService(params)
	dimensions := NewDimensionService(params)
	dataQuality := NewDataQualityService(s.stores.dataQuality, params.Logger)
	factLoader := NewFactLoaderService(params, periods, dimensions, dataQuality)
	reconciliation, err := NewReconciliationService(params)
	s.Require().NoError(err)
	s.service = NewIngestionService(params, reconciliation, factLoader, dataQuality)

	_, err = periods.GeneratePeriods(s.ctx, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)

	s.seedMappings()
}

// seedMappings gives every test a resolvable owner for pos-mapped
func (s *IngestionServiceSuite) seedMappings() {
	base := types.GetDefaultBaseModel(s.ctx)
	s.Require().NoError(s.stores.ledger.ReplacePositionMappings(s.ctx, []*ledger.PositionMapping{
		{ID: "pm-1", PositionCode: "pos-mapped", BuildingCode: "bldg-1", BaseModel: base},
	}))
	s.Require().NoError(s.stores.ledger.ReplaceBuildingMappings(s.ctx, []*ledger.BuildingMapping{
		{ID: "bm-1", BuildingCode: "bldg-1", OwningEntityID: "client-a", BaseModel: base},
	}))
}

func (s *IngestionServiceSuite) rawShift(id, date string) *source.RawShift {
	return &source.RawShift{
		ID:             source.FlexID{Value: id},
		Date:           date,
		Region:         "east",
		Employee:       source.FlexID{Value: "emp-1", Name: "Ada"},
		Position:       source.FlexID{Value: "pos-mapped", Name: "Guard"},
		ScheduledHours: source.FlexNumber{Value: decimal.NewFromInt(8), Set: true},
		WorkedHours:    source.FlexNumber{Value: decimal.NewFromInt(8), Set: true},
		ApprovedHours:  source.FlexNumber{Value: decimal.NewFromInt(8), Set: true},
		BillRate:       source.FlexNumber{Value: decimal.NewFromInt(40), Set: true},
		PayRate:        source.FlexNumber{Value: decimal.NewFromInt(25), Set: true},
		Approved:       true,
	}
}

func (s *IngestionServiceSuite) TestRunRegionDecomposesWindowChronologically() {
	// 31 days with 7-day subwindows: 7+7+7+7+3
	window := types.NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC),
	)

	run, err := s.service.RunRegion(s.ctx, "east", window)
	s.NoError(err)
	s.Equal(types.BatchRunStateCompleted, run.State)
	s.Require().NotNil(run.CompletedAt)
	s.Equal(5, run.SubwindowsTotal)
	s.Equal(5, run.SubwindowsDone)

	fetched := s.stores.scheduling.FetchWindows
	s.Require().Len(fetched, 5)
	s.True(fetched[0].Start.Equal(window.Start))
	s.True(fetched[4].End.Equal(window.End))
	s.Equal(3, fetched[4].Days())
	for i, w := range fetched {
		if i > 0 {
			s.True(w.Start.Equal(fetched[i-1].End.AddDate(0, 0, 1)))
		}
		s.LessOrEqual(w.Days(), 7)
	}
}

func (s *IngestionServiceSuite) TestRunRegionAccumulatesCounters() {
	// Two shifts in the first subwindow, one in the third
	s.stores.scheduling.AddShifts("east",
		s.rawShift("sh-1", "2025-01-06"),
		s.rawShift("sh-2", "2025-01-07"),
		s.rawShift("sh-3", "2025-01-20"),
	)

	window := types.NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC),
	)

	run, err := s.service.RunRegion(s.ctx, "east", window)
	s.NoError(err)
	s.Equal(3, run.Inserted)
	s.Equal(0, run.Rejected)
	s.Equal(3, s.stores.shifts.Total())

	stored, err := s.stores.batchRuns.Get(s.ctx, run.ID)
	s.NoError(err)
	s.Equal(types.BatchRunStateCompleted, stored.State)
	s.Equal(3, stored.Inserted)
}

func (s *IngestionServiceSuite) TestNormalizationIssuesCountAsRejected() {
	bad := s.rawShift("sh-bad", "2025-01-06")
	bad.Employee = source.FlexID{}
	s.stores.scheduling.AddShifts("east",
		s.rawShift("sh-ok", "2025-01-06"),
		bad,
	)

	window := types.NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
	)

	run, err := s.service.RunRegion(s.ctx, "east", window)
	s.NoError(err)
	s.Equal(1, run.Inserted)
	s.Equal(1, run.Rejected)

	records := s.stores.dataQuality.All()
	s.Require().Len(records, 1)
	s.Equal(types.IssueTypeMalformedRecord, records[0].IssueType)
	s.Equal("sh-bad", records[0].RecordID)
}

func (s *IngestionServiceSuite) TestRunRegionRetriesFlakySource() {
	s.stores.scheduling.FailuresBeforeSuccess = 1
	s.stores.scheduling.AddShifts("east", s.rawShift("sh-1", "2025-01-06"))

	window := types.NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
	)

	run, err := s.service.RunRegion(s.ctx, "east", window)
	s.NoError(err)
	s.Equal(types.BatchRunStateCompleted, run.State)
	s.Equal(1, run.Inserted)
}

func (s *IngestionServiceSuite) TestEmptyOwnershipDataFailsRun() {
	s.Require().NoError(s.stores.ledger.ReplacePositionMappings(s.ctx, nil))
	s.Require().NoError(s.stores.ledger.ReplaceBuildingMappings(s.ctx, nil))

	window := types.NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
	)

	run, err := s.service.RunRegion(s.ctx, "east", window)
	s.Error(err)
	s.Require().NotNil(run)
	s.Equal(types.BatchRunStateFailed, run.State)
	s.NotEmpty(run.ErrorMessage)

	stored, serr := s.stores.batchRuns.Get(s.ctx, run.ID)
	s.NoError(serr)
	s.Equal(types.BatchRunStateFailed, stored.State)
}

func (s *IngestionServiceSuite) TestCancelledContextAbortsBetweenSubwindows() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	window := types.NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC),
	)

	run, err := s.service.RunRegion(ctx, "east", window)
	s.ErrorIs(err, context.Canceled)
	s.Require().NotNil(run)
	s.Equal(types.BatchRunStateAborted, run.State)

	// The aborted state is persisted despite the cancelled run context
	stored, serr := s.stores.batchRuns.Get(s.ctx, run.ID)
	s.NoError(serr)
	s.Equal(types.BatchRunStateAborted, stored.State)
}

func (s *IngestionServiceSuite) TestRunCoversEveryRegion() {
	s.stores.scheduling.AddShifts("east", s.rawShift("sh-1", "2025-01-06"))

	window := types.NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
	)

	runs, err := s.service.Run(s.ctx, []string{"east", "west"}, window)
	s.NoError(err)
	s.Require().Len(runs, 2)

	regions := map[string]bool{}
	for _, run := range runs {
		regions[run.Region] = true
		s.Equal(types.BatchRunStateCompleted, run.State)
	}
	s.True(regions["east"])
	s.True(regions["west"])
}

func (s *IngestionServiceSuite) TestRunRejectsInvalidInput() {
	window := types.NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
	)

	_, err := s.service.Run(s.ctx, nil, window)
	s.Error(err)

	_, err = s.service.RunRegion(s.ctx, "", window)
	s.Error(err)

	backwards := types.DateRange{Start: window.End, End: window.Start}
	_, err = s.service.RunRegion(s.ctx, "east", backwards)
	s.Error(err)
}

func (s *IngestionServiceSuite) TestRefreshLedgerStampsBaseDocumentIDs() {
	base := types.GetDefaultBaseModel(s.ctx)
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s.stores.feed.Entries = []*ledger.SubmissionEntry{
		{ID: "le-1", DocumentID: "10234", OwningEntityID: "client-a", SubmittedAt: at, BaseModel: base},
		{ID: "le-2", DocumentID: "10234A", OwningEntityID: "client-a", SubmittedAt: at.AddDate(0, 0, 7), BaseModel: base},
	}
	s.stores.feed.Buildings = []*ledger.BuildingMapping{
		{ID: "bm-9", BuildingCode: "bldg-9", OwningEntityID: "client-b", BaseModel: base},
	}
	s.stores.feed.Positions = []*ledger.PositionMapping{
		{ID: "pm-9", PositionCode: "pos-9", BuildingCode: "bldg-9", BaseModel: base},
	}

	result, err := s.service.RefreshLedger(s.ctx)
	s.NoError(err)
	s.Equal(2, result.LedgerEntries)
	s.Equal(1, result.BuildingMappings)
	s.Equal(1, result.PositionMappings)

	entries, err := s.stores.ledger.ListLedger(s.ctx)
	s.NoError(err)
	s.Require().Len(entries, 2)
	for _, e := range entries {
		s.Equal("10234", e.BaseDocumentID)
	}

	// The refresh replaces the prior mapping tables wholesale
	positions, err := s.stores.ledger.ListPositionMappings(s.ctx)
	s.NoError(err)
	s.Require().Len(positions, 1)
	s.Equal("pos-9", positions[0].PositionCode)
}

func (s *IngestionServiceSuite) TestRerunOverSameWindowIsIdempotent() {
	for i := 0; i < 3; i++ {
		s.stores.scheduling.AddShifts("east", s.rawShift(fmt.Sprintf("sh-%d", i), "2025-01-06"))
	}

	window := types.NewDateRange(
		time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
	)

	first, err := s.service.RunRegion(s.ctx, "east", window)
	s.NoError(err)
	s.Equal(3, first.Inserted)

	// Later runs are separate batches, so unchanged facts are overwritten
	// in place rather than duplicated
	second, err := s.service.RunRegion(s.ctx, "east", window)
	s.NoError(err)
	s.Equal(0, second.Inserted)
	s.Equal(3, second.Overwritten)
	s.Equal(3, s.stores.shifts.Total())
}
