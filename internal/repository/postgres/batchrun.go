package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/batchrun"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/postgres"
)

type batchRunRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewBatchRunRepository(db *postgres.DB, logger *logger.Logger) batchrun.Repository {
	return &batchRunRepository{db: db, logger: logger}
}

func (r *batchRunRepository) Create(ctx context.Context, run *batchrun.Run) error {
	query := `
		INSERT INTO batch_runs (
			id, region, window_start, window_end, state,
			inserted, rejected, duplicates, overwritten, skipped,
			subwindows_total, subwindows_done, error_message,
			started_at, completed_at,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :region, :window_start, :window_end, :state,
			:inserted, :rejected, :duplicates, :overwritten, :skipped,
			:subwindows_total, :subwindows_done, :error_message,
			:started_at, :completed_at,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create batch run").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *batchRunRepository) Update(ctx context.Context, run *batchrun.Run) error {
	run.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE batch_runs
		SET state = :state,
			inserted = :inserted,
			rejected = :rejected,
			duplicates = :duplicates,
			overwritten = :overwritten,
			skipped = :skipped,
			subwindows_done = :subwindows_done,
			error_message = :error_message,
			completed_at = :completed_at,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to update batch run %s", run.ID).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *batchRunRepository) Get(ctx context.Context, id string) (*batchrun.Run, error) {
	var run batchrun.Run
	query := `SELECT * FROM batch_runs WHERE id = $1`

	err := r.db.GetQuerier(ctx).GetContext(ctx, &run, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("batch run not found").
				WithHintf("no batch run with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get batch run").
			Mark(ierr.ErrDatabase)
	}
	return &run, nil
}

func (r *batchRunRepository) List(ctx context.Context, limit int) ([]*batchrun.Run, error) {
	if limit <= 0 {
		limit = 50
	}

	var runs []*batchrun.Run
	query := `
		SELECT * FROM batch_runs
		ORDER BY started_at DESC
		LIMIT $1`

	err := r.db.GetQuerier(ctx).SelectContext(ctx, &runs, query, limit)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list batch runs").
			Mark(ierr.ErrDatabase)
	}
	return runs, nil
}
