package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/period"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/postgres"
)

type periodRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewPeriodRepository(db *postgres.DB, logger *logger.Logger) period.Repository {
	return &periodRepository{db: db, logger: logger}
}

func (r *periodRepository) CreateBulk(ctx context.Context, periods []*period.BillingPeriod) (int, error) {
	if len(periods) == 0 {
		return 0, nil
	}

	// ON CONFLICT DO NOTHING keeps generation idempotent; RowsAffected
	// reports how many rows were genuinely new
	query := `
		INSERT INTO billing_periods (
			id, fiscal_year, sequence, start_date, end_date, batch_id,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :fiscal_year, :sequence, :start_date, :end_date, :batch_id,
			:status, :created_at, :updated_at, :created_by, :updated_by
		) ON CONFLICT (id) DO NOTHING`

	result, err := r.db.NamedExecContext(ctx, query, periods)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to insert billing periods").
			Mark(ierr.ErrDatabase)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to read inserted row count").
			Mark(ierr.ErrDatabase)
	}
	return int(inserted), nil
}

func (r *periodRepository) Get(ctx context.Context, id string) (*period.BillingPeriod, error) {
	var p period.BillingPeriod
	query := `SELECT * FROM billing_periods WHERE id = $1`

	err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("billing period not found").
				WithHintf("no billing period with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get billing period").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *periodRepository) FindByDate(ctx context.Context, date time.Time) (*period.BillingPeriod, error) {
	var p period.BillingPeriod
	query := `
		SELECT * FROM billing_periods
		WHERE start_date <= $1 AND end_date >= $1
		LIMIT 1`

	err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, date)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("no billing period covers date").
				WithHintf("date %s is outside every generated period", date.Format(time.DateOnly)).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to resolve billing period by date").
			Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *periodRepository) ListByFiscalYear(ctx context.Context, fiscalYear int) ([]*period.BillingPeriod, error) {
	var periods []*period.BillingPeriod
	query := `
		SELECT * FROM billing_periods
		WHERE fiscal_year = $1
		ORDER BY sequence`

	err := r.db.GetQuerier(ctx).SelectContext(ctx, &periods, query, fiscalYear)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list billing periods").
			Mark(ierr.ErrDatabase)
	}
	return periods, nil
}
