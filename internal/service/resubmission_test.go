package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/shiftledger/shiftledger/internal/domain/resubmission"
	"github.com/shiftledger/shiftledger/internal/testutil"
	"github.com/shiftledger/shiftledger/internal/types"
)

type ResubmissionServiceSuite struct {
	suite.Suite
	ctx     context.Context
	stores  *testStores
	service ResubmissionService
}

func TestResubmissionService(t *testing.T) {
	suite.Run(t, new(ResubmissionServiceSuite))
}

func (s *ResubmissionServiceSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.stores = newTestStores()
	s.service = NewResubmissionService(newTestParams(s.stores))
}

func (s *ResubmissionServiceSuite) incoming(doc string, at time.Time) *resubmission.Incoming {
	return &resubmission.Incoming{
		DocumentID:      doc,
		SubmissionDate:  at,
		Recipients:      "ap@example.com",
		Subject:         "Invoice " + doc,
		SubmittedBy:     "billing",
		AttachmentCount: 1,
	}
}

func (s *ResubmissionServiceSuite) TestFirstSubmissionIsNew() {
	at := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	state, record, err := s.service.Track(s.ctx, s.incoming("doc-1", at))
	s.NoError(err)
	s.Equal(types.ResubmissionStateNew, state)
	s.True(record.SubmissionDate.Equal(at))
	s.Nil(record.PriorSubmissionDate)
}

func (s *ResubmissionServiceSuite) TestSameDateIsUnchanged() {
	at := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	_, _, err := s.service.Track(s.ctx, s.incoming("doc-1", at))
	s.NoError(err)

	state, record, err := s.service.Track(s.ctx, s.incoming("doc-1", at))
	s.NoError(err)
	s.Equal(types.ResubmissionStateUnchanged, state)
	s.Nil(record.PriorSubmissionDate)
}

func (s *ResubmissionServiceSuite) TestNewerDateSupersedes() {
	first := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	second := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)

	_, _, err := s.service.Track(s.ctx, s.incoming("doc-1", first))
	s.NoError(err)

	updated := s.incoming("doc-1", second)
	updated.Recipients = "ap2@example.com"
	state, record, err := s.service.Track(s.ctx, updated)
	s.NoError(err)
	s.Equal(types.ResubmissionStateSuperseded, state)
	s.True(record.SubmissionDate.Equal(second))
	s.Require().NotNil(record.PriorSubmissionDate)
	s.True(record.PriorSubmissionDate.Equal(first))
	s.Equal("ap2@example.com", record.Recipients)

	stored, err := s.stores.resubmissions.GetByDocumentID(s.ctx, "doc-1")
	s.NoError(err)
	s.True(stored.SubmissionDate.Equal(second))
}

func (s *ResubmissionServiceSuite) TestOlderDateIsStale() {
	first := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	second := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)

	_, _, err := s.service.Track(s.ctx, s.incoming("doc-1", first))
	s.NoError(err)
	_, _, err = s.service.Track(s.ctx, s.incoming("doc-1", second))
	s.NoError(err)

	// An out-of-order delivery of the original submission
	state, record, err := s.service.Track(s.ctx, s.incoming("doc-1", first))
	s.NoError(err)
	s.Equal(types.ResubmissionStateStale, state)
	s.True(record.SubmissionDate.Equal(second))
	s.Require().NotNil(record.PriorSubmissionDate)
	s.True(record.PriorSubmissionDate.Equal(first))
}

func (s *ResubmissionServiceSuite) TestChainOfSupersedes() {
	dates := []time.Time{
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 8, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC),
	}

	for _, d := range dates {
		_, _, err := s.service.Track(s.ctx, s.incoming("doc-1", d))
		s.NoError(err)
	}

	record, err := s.stores.resubmissions.GetByDocumentID(s.ctx, "doc-1")
	s.NoError(err)
	s.True(record.SubmissionDate.Equal(dates[2]))
	// Prior date tracks the immediately superseded submission, not the first
	s.True(record.PriorSubmissionDate.Equal(dates[1]))
}

func (s *ResubmissionServiceSuite) TestMissingFieldsRejected() {
	_, _, err := s.service.Track(s.ctx, &resubmission.Incoming{DocumentID: ""})
	s.Error(err)

	_, _, err = s.service.Track(s.ctx, &resubmission.Incoming{DocumentID: "doc-1"})
	s.Error(err)
}
