package service

import (
	"context"
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/dataquality"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/logger"
	"github.com/shiftledger/shiftledger/internal/types"
)

// DataQualityService is the sink for every record that fails a completeness
// or consistency check. It exposes no read API; reporting queries the table
// directly.
type DataQualityService interface {
	// Record appends one quality record. A failure to write is returned as
	// a fatal database error: a quality event must never silently disappear,
	// so the caller aborts the batch instead.
	Record(ctx context.Context, batchID, sourceTable, recordID string, issueType types.IssueType, description, payload string) error
}

type dataQualityService struct {
	repo   dataquality.Repository
	logger *logger.Logger
}

func NewDataQualityService(repo dataquality.Repository, logger *logger.Logger) DataQualityService {
	return &dataQualityService{repo: repo, logger: logger}
}

func (s *dataQualityService) Record(ctx context.Context, batchID, sourceTable, recordID string, issueType types.IssueType, description, payload string) error {
	record := &dataquality.Record{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_DATA_QUALITY),
		BatchID:     batchID,
		SourceTable: sourceTable,
		RecordID:    recordID,
		IssueType:   issueType,
		Description: description,
		Payload:     payload,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Errorw("failed to write data quality record, aborting batch",
			"batch_id", batchID,
			"record_id", recordID,
			"issue_type", issueType,
			"error", err,
		)
		return ierr.WithError(err).
			WithHint("Data quality record could not be persisted").
			WithReportableDetails(map[string]any{
				"batch_id":  batchID,
				"record_id": recordID,
			}).
			Mark(ierr.ErrDatabase)
	}

	s.logger.Debugw("recorded data quality event",
		"batch_id", batchID,
		"source_table", sourceTable,
		"record_id", recordID,
		"issue_type", issueType,
	)
	return nil
}
