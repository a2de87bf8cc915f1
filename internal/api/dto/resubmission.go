package dto

import (
	"time"

	"github.com/shiftledger/shiftledger/internal/domain/resubmission"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/types"
	"github.com/shiftledger/shiftledger/internal/validator"
)

// TrackResubmissionRequest records one observed document submission
type TrackResubmissionRequest struct {
	DocumentID      string `json:"document_id" validate:"required"`
	SubmissionDate  string `json:"submission_date" validate:"required"`
	Recipients      string `json:"recipients"`
	Subject         string `json:"subject"`
	SubmittedBy     string `json:"submitted_by"`
	AttachmentCount int    `json:"attachment_count"`
}

func (r *TrackResubmissionRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// ToIncoming converts the request into the domain input
func (r *TrackResubmissionRequest) ToIncoming() (*resubmission.Incoming, error) {
	submitted, err := time.Parse(time.RFC3339, r.SubmissionDate)
	if err != nil {
		// Date-only submissions are accepted as midnight UTC
		submitted, err = time.ParseInLocation(time.DateOnly, r.SubmissionDate, time.UTC)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHintf("submission_date %q is neither RFC3339 nor YYYY-MM-DD", r.SubmissionDate).
				Mark(ierr.ErrValidation)
		}
	}

	return &resubmission.Incoming{
		DocumentID:      r.DocumentID,
		SubmissionDate:  submitted.UTC(),
		Recipients:      r.Recipients,
		Subject:         r.Subject,
		SubmittedBy:     r.SubmittedBy,
		AttachmentCount: r.AttachmentCount,
	}, nil
}

// TrackResubmissionResponse reports the tracking outcome
type TrackResubmissionResponse struct {
	State  types.ResubmissionState `json:"state"`
	Record *resubmission.Record    `json:"record"`
}
