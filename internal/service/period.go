package service

import (
	"context"
	"time"

	"github.com/shiftledger/shiftledger/internal/cache"
	"github.com/shiftledger/shiftledger/internal/domain/period"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/types"
)

// PeriodService generates and resolves billing periods. Generation is
// idempotent; resolution consults an in-memory calendar cache first since
// periods are immutable once created.
type PeriodService interface {
	// GeneratePeriods produces the full set of contiguous fixed-length
	// periods for the fiscal year beginning at fiscalYearStart. The first
	// period starts on the first configured anchor weekday on or after
	// fiscalYearStart. Re-running for an already-generated year inserts
	// zero rows.
	GeneratePeriods(ctx context.Context, fiscalYearStart time.Time) (*GeneratePeriodsResult, error)

	// ResolvePeriod maps a calendar date to the id of the period that
	// contains it. Fails with ErrPeriodNotFound when the date is outside
	// every generated period.
	ResolvePeriod(ctx context.Context, date time.Time) (string, error)

	// ListPeriods returns the generated periods of a fiscal year
	ListPeriods(ctx context.Context, fiscalYear int) ([]*period.BillingPeriod, error)
}

// GeneratePeriodsResult reports what generation did
type GeneratePeriodsResult struct {
	FiscalYear int                     `json:"fiscal_year"`
	Created    int                     `json:"created"`
	Periods    []*period.BillingPeriod `json:"periods"`
}

type periodService struct {
	ServiceParams
}

func NewPeriodService(params ServiceParams) PeriodService {
	return &periodService{ServiceParams: params}
}

func (s *periodService) GeneratePeriods(ctx context.Context, fiscalYearStart time.Time) (*GeneratePeriodsResult, error) {
	if fiscalYearStart.IsZero() {
		return nil, ierr.NewError("missing fiscal year start").
			WithHint("Period generation requires the fiscal year start date").
			Mark(ierr.ErrValidation)
	}

	cfg := s.Config.Billing
	anchor := types.NextWeekday(fiscalYearStart, cfg.AnchorWeekday)
	fiscalYear := anchor.Year()
	batchID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BATCH)

	periods := make([]*period.BillingPeriod, 0, cfg.PeriodsPerYear)
	for seq := 1; seq <= cfg.PeriodsPerYear; seq++ {
		start := anchor.AddDate(0, 0, (seq-1)*cfg.PeriodDays)
		end := start.AddDate(0, 0, cfg.PeriodDays-1)

		p := &period.BillingPeriod{
			ID:         period.FormatID(fiscalYear, seq),
			FiscalYear: fiscalYear,
			Sequence:   seq,
			StartDate:  start,
			EndDate:    end,
			BatchID:    batchID,
			BaseModel:  types.GetDefaultBaseModel(ctx),
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}

	created, err := s.PeriodRepo.CreateBulk(ctx, periods)
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("generated billing periods",
		"fiscal_year", fiscalYear,
		"anchor", anchor.Format(time.DateOnly),
		"created", created,
		"existing", len(periods)-created,
	)

	return &GeneratePeriodsResult{
		FiscalYear: fiscalYear,
		Created:    created,
		Periods:    periods,
	}, nil
}

func (s *periodService) ResolvePeriod(ctx context.Context, date time.Time) (string, error) {
	date = types.BeginningOfDay(date)
	cacheKey := cache.GenerateKey(cache.PrefixPeriod, date.Format(time.DateOnly))

	if cached, found := s.Cache.Get(ctx, cacheKey); found {
		if id, ok := cached.(string); ok {
			return id, nil
		}
	}

	p, err := s.PeriodRepo.FindByDate(ctx, date)
	if err != nil {
		if ierr.IsNotFound(err) {
			return "", ierr.NewError("no billing period covers date").
				WithHintf("date %s is outside every generated billing period", date.Format(time.DateOnly)).
				WithReportableDetails(map[string]any{
					"date": date.Format(time.DateOnly),
				}).
				Mark(ierr.ErrPeriodNotFound)
		}
		return "", err
	}

	// Periods are immutable, so the cache never needs invalidation
	s.Cache.Set(ctx, cacheKey, p.ID, 24*time.Hour)
	return p.ID, nil
}

func (s *periodService) ListPeriods(ctx context.Context, fiscalYear int) ([]*period.BillingPeriod, error) {
	return s.PeriodRepo.ListByFiscalYear(ctx, fiscalYear)
}
