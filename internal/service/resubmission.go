package service

import (
	"context"

	"github.com/shiftledger/shiftledger/internal/domain/resubmission"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/types"
)

// ResubmissionService tracks repeat deliveries of invoice documents. The
// tracker keeps exactly one row per document id: the latest submission plus
// the date of the one it superseded, so reviewers can always answer "when
// did we last send this, and when before that".
type ResubmissionService interface {
	// Track records one observed submission and classifies it against the
	// tracked state of its document. Only a strictly newer submission takes
	// over the row; equal and older deliveries are counted no-ops.
	Track(ctx context.Context, incoming *resubmission.Incoming) (types.ResubmissionState, *resubmission.Record, error)
}

type resubmissionService struct {
	ServiceParams
}

func NewResubmissionService(params ServiceParams) ResubmissionService {
	return &resubmissionService{ServiceParams: params}
}

func (s *resubmissionService) Track(ctx context.Context, incoming *resubmission.Incoming) (types.ResubmissionState, *resubmission.Record, error) {
	if err := incoming.Validate(); err != nil {
		return "", nil, err
	}

	existing, err := s.ResubmissionRepo.GetByDocumentID(ctx, incoming.DocumentID)
	if err != nil {
		if !ierr.IsNotFound(err) {
			return "", nil, err
		}
		record := &resubmission.Record{
			ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RESUBMISSION),
			DocumentID:      incoming.DocumentID,
			SubmissionDate:  incoming.SubmissionDate,
			Recipients:      incoming.Recipients,
			Subject:         incoming.Subject,
			SubmittedBy:     incoming.SubmittedBy,
			AttachmentCount: incoming.AttachmentCount,
			BaseModel:       types.GetDefaultBaseModel(ctx),
		}
		if err := s.ResubmissionRepo.Create(ctx, record); err != nil {
			return "", nil, err
		}
		return types.ResubmissionStateNew, record, nil
	}

	switch {
	case incoming.SubmissionDate.Equal(existing.SubmissionDate):
		// Same delivery observed again, nothing to update
		return types.ResubmissionStateUnchanged, existing, nil

	case incoming.SubmissionDate.After(existing.SubmissionDate):
		prior := existing.SubmissionDate
		existing.PriorSubmissionDate = &prior
		existing.SubmissionDate = incoming.SubmissionDate
		existing.Recipients = incoming.Recipients
		existing.Subject = incoming.Subject
		existing.SubmittedBy = incoming.SubmittedBy
		existing.AttachmentCount = incoming.AttachmentCount

		if err := s.ResubmissionRepo.Update(ctx, existing); err != nil {
			return "", nil, err
		}

		s.Logger.Infow("document resubmitted",
			"document_id", existing.DocumentID,
			"submission_date", existing.SubmissionDate,
			"prior_submission_date", prior,
		)
		return types.ResubmissionStateSuperseded, existing, nil

	default:
		// An out-of-order delivery of an already superseded submission.
		// The tracked row stays as is: the newer state must not regress.
		s.Logger.Infow("ignoring stale submission",
			"document_id", incoming.DocumentID,
			"submission_date", incoming.SubmissionDate,
			"tracked_date", existing.SubmissionDate,
		)
		return types.ResubmissionStateStale, existing, nil
	}
}
