package postgres

import (
	"context"

	"github.com/shiftledger/shiftledger/internal/domain/dataquality"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/postgres"
)

type dataQualityRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewDataQualityRepository(db *postgres.DB, logger *logger.Logger) dataquality.Repository {
	return &dataQualityRepository{db: db, logger: logger}
}

func (r *dataQualityRepository) Create(ctx context.Context, record *dataquality.Record) error {
	query := `
		INSERT INTO data_quality_records (
			id, batch_id, source_table, record_id, issue_type, description, payload, created_at
		) VALUES (
			:id, :batch_id, :source_table, :record_id, :issue_type, :description, :payload, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to insert data quality record").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *dataQualityRepository) ListByBatch(ctx context.Context, batchID string) ([]*dataquality.Record, error) {
	var records []*dataquality.Record
	query := `
		SELECT * FROM data_quality_records
		WHERE batch_id = $1
		ORDER BY created_at`

	err := r.db.GetQuerier(ctx).SelectContext(ctx, &records, query, batchID)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list data quality records").
			Mark(ierr.ErrDatabase)
	}
	return records, nil
}
