package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/testutil"
)

type PeriodServiceSuite struct {
	suite.Suite
	ctx     context.Context
	stores  *testStores
	service PeriodService
}

func TestPeriodService(t *testing.T) {
	suite.Run(t, new(PeriodServiceSuite))
}

func (s *PeriodServiceSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.stores = newTestStores()
	s.service = NewPeriodService(newTestParams(s.stores))
}

func (s *PeriodServiceSuite) TestGenerateFullFiscalYear() {
	// Jan 1 2025 is a Wednesday; the first Sunday on or after it is Jan 5
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	anchor := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)

	result, err := s.service.GeneratePeriods(s.ctx, start)
	s.NoError(err)
	s.Equal(26, result.Created)
	s.Len(result.Periods, 26)

	s.True(result.Periods[0].StartDate.Equal(anchor))
	s.True(result.Periods[25].EndDate.Equal(anchor.AddDate(0, 0, 363)))

	// Contiguity: each period starts the day after the previous one ends
	for i := 1; i < len(result.Periods); i++ {
		prev := result.Periods[i-1]
		s.True(result.Periods[i].StartDate.Equal(prev.EndDate.AddDate(0, 0, 1)))
	}
}

func (s *PeriodServiceSuite) TestGenerateOnAnchorWeekday() {
	// Jun 1 2025 is itself a Sunday, so the anchor is the start date
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	result, err := s.service.GeneratePeriods(s.ctx, start)
	s.NoError(err)
	s.True(result.Periods[0].StartDate.Equal(start))
}

func (s *PeriodServiceSuite) TestGenerateIsIdempotent() {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := s.service.GeneratePeriods(s.ctx, start)
	s.NoError(err)
	s.Equal(26, first.Created)

	second, err := s.service.GeneratePeriods(s.ctx, start)
	s.NoError(err)
	s.Equal(0, second.Created)
	s.Equal(26, s.stores.periods.Count())
}

func (s *PeriodServiceSuite) TestResolvePeriod() {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.service.GeneratePeriods(s.ctx, start)
	s.NoError(err)

	// Jan 5 (anchor) through Jan 18 is the first period
	id, err := s.service.ResolvePeriod(s.ctx, time.Date(2025, 1, 10, 15, 30, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal("FY2025-P01", id)

	id, err = s.service.ResolvePeriod(s.ctx, time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal("FY2025-P02", id)

	// Resolution is cached; a second lookup hits the cache path
	id, err = s.service.ResolvePeriod(s.ctx, time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC))
	s.NoError(err)
	s.Equal("FY2025-P02", id)
}

func (s *PeriodServiceSuite) TestResolvePeriodOutsideGeneratedRange() {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.service.GeneratePeriods(s.ctx, start)
	s.NoError(err)

	_, err = s.service.ResolvePeriod(s.ctx, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	s.Error(err)
	s.True(ierr.IsPeriodNotFound(err))

	// Day before the anchor is also uncovered
	_, err = s.service.ResolvePeriod(s.ctx, time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC))
	s.True(ierr.IsPeriodNotFound(err))
}

func (s *PeriodServiceSuite) TestListPeriods() {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := s.service.GeneratePeriods(s.ctx, start)
	s.NoError(err)

	periods, err := s.service.ListPeriods(s.ctx, 2025)
	s.NoError(err)
	s.Len(periods, 26)
	s.Equal(1, periods[0].Sequence)
	s.Equal(26, periods[25].Sequence)
}
