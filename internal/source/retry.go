package source

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/shiftledger/shiftledger/internal/domain/ledger"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/types"
)

// RetryingSource decorates a SchedulingSource with bounded exponential
// backoff. Retry lives here at the collaborator boundary; reconciliation
// and dimension logic never retry anything.
type RetryingSource struct {
	inner      SchedulingSource
	maxRetries uint64
	logger     *logger.Logger
}

func NewRetryingSource(inner SchedulingSource, maxRetries int, logger *logger.Logger) *RetryingSource {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingSource{
		inner:      inner,
		maxRetries: uint64(maxRetries),
		logger:     logger,
	}
}

func (s *RetryingSource) FetchShifts(ctx context.Context, region string, window types.DateRange) ([]*RawShift, error) {
	return retryFetch(ctx, s, "shifts", func() ([]*RawShift, error) {
		return s.inner.FetchShifts(ctx, region, window)
	})
}

func (s *RetryingSource) FetchEmployees(ctx context.Context, region string) ([]*RawEmployee, error) {
	return retryFetch(ctx, s, "employees", func() ([]*RawEmployee, error) {
		return s.inner.FetchEmployees(ctx, region)
	})
}

func (s *RetryingSource) FetchPositions(ctx context.Context, region string) ([]*RawPosition, error) {
	return retryFetch(ctx, s, "positions", func() ([]*RawPosition, error) {
		return s.inner.FetchPositions(ctx, region)
	})
}

func retryFetch[T any](ctx context.Context, s *RetryingSource, what string, fetch func() ([]*T, error)) ([]*T, error) {
	var result []*T

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newExponentialBackOff(), s.maxRetries),
		ctx,
	)

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		var ferr error
		result, ferr = fetch()
		if ferr != nil {
			s.logger.Warnw("source fetch failed, will retry",
				"what", what,
				"attempt", attempt,
				"error", ferr,
			)
		}
		return ferr
	}, policy)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func newExponentialBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 5 * time.Minute
	return b
}

// RetryingLedgerSource applies the same bounded backoff to the submission
// ledger feed
type RetryingLedgerSource struct {
	inner      LedgerSource
	maxRetries uint64
	logger     *logger.Logger
}

func NewRetryingLedgerSource(inner LedgerSource, maxRetries int, logger *logger.Logger) *RetryingLedgerSource {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &RetryingLedgerSource{
		inner:      inner,
		maxRetries: uint64(maxRetries),
		logger:     logger,
	}
}

func (s *RetryingLedgerSource) FetchLedger(ctx context.Context) ([]*ledger.SubmissionEntry, error) {
	return retryLedgerFetch(ctx, s, "ledger", func() ([]*ledger.SubmissionEntry, error) {
		return s.inner.FetchLedger(ctx)
	})
}

func (s *RetryingLedgerSource) FetchBuildingMappings(ctx context.Context) ([]*ledger.BuildingMapping, error) {
	return retryLedgerFetch(ctx, s, "building_mappings", func() ([]*ledger.BuildingMapping, error) {
		return s.inner.FetchBuildingMappings(ctx)
	})
}

func (s *RetryingLedgerSource) FetchPositionMappings(ctx context.Context) ([]*ledger.PositionMapping, error) {
	return retryLedgerFetch(ctx, s, "position_mappings", func() ([]*ledger.PositionMapping, error) {
		return s.inner.FetchPositionMappings(ctx)
	})
}

func retryLedgerFetch[T any](ctx context.Context, s *RetryingLedgerSource, what string, fetch func() ([]*T, error)) ([]*T, error) {
	var result []*T

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newExponentialBackOff(), s.maxRetries),
		ctx,
	)

	err := backoff.Retry(func() error {
		var ferr error
		result, ferr = fetch()
		if ferr != nil {
			s.logger.Warnw("ledger fetch failed, will retry", "what", what, "error", ferr)
		}
		return ferr
	}, policy)
	if err != nil {
		return nil, err
	}
	return result, nil
}
