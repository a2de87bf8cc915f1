package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shiftledger/shiftledger/internal/domain/dimension"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/postgres"
	"github.com/shiftledger/shiftledger/internal/types"
)

// pgUniqueViolation is the Postgres error code raised by the partial unique
// index on current dimension versions
const pgUniqueViolation = "23505"

type dimensionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDimensionRepository(db *postgres.DB, logger *logger.Logger) dimension.Repository {
	return &dimensionRepository{db: db, logger: logger}
}

func (r *dimensionRepository) GetCurrent(ctx context.Context, entityType types.EntityType, naturalKey string) (*dimension.Record, error) {
	var record dimension.Record
	query := `
		SELECT * FROM dimensions
		WHERE entity_type = $1 AND natural_key = $2 AND is_current`

	err := r.db.GetQuerier(ctx).GetContext(ctx, &record, query, entityType, naturalKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("dimension entity not found").
				WithHintf("no current %s version for key %s", entityType, naturalKey).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get current dimension version").
			Mark(ierr.ErrDatabase)
	}
	return &record, nil
}

func (r *dimensionRepository) Insert(ctx context.Context, record *dimension.Record) (int64, error) {
	query := `
		INSERT INTO dimensions (
			entity_type, natural_key, attributes, valid_from, valid_to,
			is_current, batch_id,
			status, created_at, updated_at, created_by, updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING surrogate_key`

	var key int64
	err := r.db.GetQuerier(ctx).QueryRowContext(ctx, query,
		record.EntityType, record.NaturalKey, record.Attributes,
		record.ValidFrom, record.ValidTo, record.IsCurrent, record.BatchID,
		record.Status, record.CreatedAt, record.UpdatedAt,
		record.CreatedBy, record.UpdatedBy,
	).Scan(&key)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			// The single-current constraint fired: another current version
			// exists for this key. Fatal to the batch, never retried.
			return 0, ierr.WithError(err).
				WithHintf("a current %s version already exists for key %s", record.EntityType, record.NaturalKey).
				WithReportableDetails(map[string]any{
					"entity_type": record.EntityType,
					"natural_key": record.NaturalKey,
				}).
				Mark(ierr.ErrOverlapViolation)
		}
		return 0, ierr.WithError(err).
			WithHint("Failed to insert dimension version").
			Mark(ierr.ErrDatabase)
	}

	record.SurrogateKey = key
	return key, nil
}

func (r *dimensionRepository) Close(ctx context.Context, surrogateKey int64, closedAt time.Time, updatedBy string) error {
	query := `
		UPDATE dimensions
		SET valid_to = $1, is_current = FALSE, updated_at = $1, updated_by = $2
		WHERE surrogate_key = $3 AND is_current`

	result, err := r.db.GetQuerier(ctx).ExecContext(ctx, query, closedAt, updatedBy, surrogateKey)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to close dimension version").
			Mark(ierr.ErrDatabase)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to read closed row count").
			Mark(ierr.ErrDatabase)
	}
	if affected == 0 {
		return ierr.NewError("dimension version already closed").
			WithHintf("surrogate key %d has no open version", surrogateKey).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

func (r *dimensionRepository) ListVersions(ctx context.Context, entityType types.EntityType, naturalKey string) ([]*dimension.Record, error) {
	var records []*dimension.Record
	query := `
		SELECT * FROM dimensions
		WHERE entity_type = $1 AND natural_key = $2
		ORDER BY valid_from`

	err := r.db.GetQuerier(ctx).SelectContext(ctx, &records, query, entityType, naturalKey)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list dimension versions").
			Mark(ierr.ErrDatabase)
	}
	return records, nil
}
