package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/ledger"
	"github.com/shiftledger/shiftledger/internal/source"
	"github.com/shiftledger/shiftledger/internal/types"
)

// FakeSchedulingSource implements source.SchedulingSource for tests.
// Shifts are registered per region; a fetch returns those whose date falls
// inside the requested window. FailuresBeforeSuccess simulates a flaky
// upstream for retry tests.
type FakeSchedulingSource struct {
	mu                    sync.Mutex
	shifts                map[string][]*source.RawShift
	employees             map[string][]*source.RawEmployee
	positions             map[string][]*source.RawPosition
	FailuresBeforeSuccess int
	FetchWindows          []types.DateRange
	failures              int
}

func NewFakeSchedulingSource() *FakeSchedulingSource {
	return &FakeSchedulingSource{
		shifts:    make(map[string][]*source.RawShift),
		employees: make(map[string][]*source.RawEmployee),
		positions: make(map[string][]*source.RawPosition),
	}
}

// AddShifts registers raw shifts for a region
func (s *FakeSchedulingSource) AddShifts(region string, shifts ...*source.RawShift) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shifts[region] = append(s.shifts[region], shifts...)
}

func (s *FakeSchedulingSource) FetchShifts(ctx context.Context, region string, window types.DateRange) ([]*source.RawShift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures < s.FailuresBeforeSuccess {
		s.failures++
		return nil, context.DeadlineExceeded
	}
	s.FetchWindows = append(s.FetchWindows, window)

	var out []*source.RawShift
	for _, raw := range s.shifts[region] {
		date, err := parseShiftDate(raw.Date)
		if err != nil {
			// Unparseable dates still flow through so normalization
			// rejects them
			out = append(out, raw)
			continue
		}
		if window.Contains(date) {
			out = append(out, raw)
		}
	}
	return out, nil
}

func (s *FakeSchedulingSource) FetchEmployees(ctx context.Context, region string) ([]*source.RawEmployee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*source.RawEmployee(nil), s.employees[region]...), nil
}

func (s *FakeSchedulingSource) FetchPositions(ctx context.Context, region string) ([]*source.RawPosition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*source.RawPosition(nil), s.positions[region]...), nil
}

func parseShiftDate(s string) (time.Time, error) {
	return time.ParseInLocation(source.ShiftDateLayout, s, time.UTC)
}

// FakeLedgerSource implements source.LedgerSource for tests
type FakeLedgerSource struct {
	Entries   []*ledger.SubmissionEntry
	Buildings []*ledger.BuildingMapping
	Positions []*ledger.PositionMapping
}

func NewFakeLedgerSource() *FakeLedgerSource {
	return &FakeLedgerSource{}
}

func (s *FakeLedgerSource) FetchLedger(ctx context.Context) ([]*ledger.SubmissionEntry, error) {
	return append([]*ledger.SubmissionEntry(nil), s.Entries...), nil
}

func (s *FakeLedgerSource) FetchBuildingMappings(ctx context.Context) ([]*ledger.BuildingMapping, error) {
	return append([]*ledger.BuildingMapping(nil), s.Buildings...), nil
}

func (s *FakeLedgerSource) FetchPositionMappings(ctx context.Context) ([]*ledger.PositionMapping, error) {
	return append([]*ledger.PositionMapping(nil), s.Positions...), nil
}
