package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/resubmission"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/postgres"
)

type resubmissionRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewResubmissionRepository(db *postgres.DB, logger *logger.Logger) resubmission.Repository {
	return &resubmissionRepository{db: db, logger: logger}
}

func (r *resubmissionRepository) GetByDocumentID(ctx context.Context, documentID string) (*resubmission.Record, error) {
	var record resubmission.Record
	query := `SELECT * FROM resubmissions WHERE document_id = $1`

	err := r.db.GetQuerier(ctx).GetContext(ctx, &record, query, documentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("document not tracked").
				WithHintf("no tracked submission for document %s", documentID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get tracked submission").
			Mark(ierr.ErrDatabase)
	}
	return &record, nil
}

func (r *resubmissionRepository) Create(ctx context.Context, record *resubmission.Record) error {
	query := `
		INSERT INTO resubmissions (
			id, document_id, submission_date, prior_submission_date,
			recipients, subject, submitted_by, attachment_count,
			status, created_at, updated_at, created_by, updated_by
		) VALUES (
			:id, :document_id, :submission_date, :prior_submission_date,
			:recipients, :subject, :submitted_by, :attachment_count,
			:status, :created_at, :updated_at, :created_by, :updated_by
		)`

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to track document %s", record.DocumentID).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *resubmissionRepository) Update(ctx context.Context, record *resubmission.Record) error {
	record.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE resubmissions
		SET submission_date = :submission_date,
			prior_submission_date = :prior_submission_date,
			recipients = :recipients,
			subject = :subject,
			submitted_by = :submitted_by,
			attachment_count = :attachment_count,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return ierr.WithError(err).
			WithHintf("Failed to update tracked document %s", record.DocumentID).
			Mark(ierr.ErrDatabase)
	}
	return nil
}
