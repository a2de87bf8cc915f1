package resubmission

import (
	"time"

	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/types"
)

// Record tracks the latest delivery of an invoice document together with
// the delivery it superseded. PriorSubmissionDate is only ever set by a
// strictly newer submission taking over; an equal-or-older delivery never
// overwrites it.
type Record struct {
	ID                  string     `db:"id" json:"id"`
	DocumentID          string     `db:"document_id" json:"document_id"`
	SubmissionDate      time.Time  `db:"submission_date" json:"submission_date"`
	PriorSubmissionDate *time.Time `db:"prior_submission_date" json:"prior_submission_date,omitempty"`
	Recipients          string     `db:"recipients" json:"recipients"`
	Subject             string     `db:"subject" json:"subject"`
	SubmittedBy         string     `db:"submitted_by" json:"submitted_by"`
	AttachmentCount     int        `db:"attachment_count" json:"attachment_count"`
	types.BaseModel
}

// Incoming is one observed submission of a document
type Incoming struct {
	DocumentID      string    `json:"document_id"`
	SubmissionDate  time.Time `json:"submission_date"`
	Recipients      string    `json:"recipients"`
	Subject         string    `json:"subject"`
	SubmittedBy     string    `json:"submitted_by"`
	AttachmentCount int       `json:"attachment_count"`
}

func (i *Incoming) Validate() error {
	if i.DocumentID == "" {
		return ierr.NewError("missing document id").
			Mark(ierr.ErrValidation)
	}
	if i.SubmissionDate.IsZero() {
		return ierr.NewError("missing submission date").
			WithHintf("document %s has no submission date", i.DocumentID).
			Mark(ierr.ErrValidation)
	}
	return nil
}
