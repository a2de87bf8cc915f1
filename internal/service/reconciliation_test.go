package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/shiftledger/shiftledger/internal/domain/ledger"
	"github.com/shiftledger/shiftledger/internal/testutil"
	"github.com/shiftledger/shiftledger/internal/types"
)

type ReconciliationServiceSuite struct {
	suite.Suite
	ctx     context.Context
	stores  *testStores
	service ReconciliationService
}

func TestReconciliationService(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceSuite))
}

func (s *ReconciliationServiceSuite) SetupTest() {
	s.ctx = testutil.SetupContext()
	s.stores = newTestStores()

	svc, err := NewReconciliationService(newTestParams(s.stores))
	s.Require().NoError(err)
	s.service = svc
}

func (s *ReconciliationServiceSuite) entry(doc, owner string, submittedAt time.Time) *ledger.SubmissionEntry {
	return &ledger.SubmissionEntry{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_LEDGER_ENTRY),
		DocumentID:     doc,
		BaseDocumentID: s.service.BaseDocumentID(doc),
		OwningEntityID: owner,
		SubmittedAt:    submittedAt,
		BaseModel:      types.GetDefaultBaseModel(s.ctx),
	}
}

func (s *ReconciliationServiceSuite) TestBaseDocumentID() {
	s.Equal("10234", s.service.BaseDocumentID("10234"))
	s.Equal("10234", s.service.BaseDocumentID("10234A"))
	s.Equal("10234", s.service.BaseDocumentID("10234Rev"))
	// A pure-alphabetic id stays intact rather than collapsing to ""
	s.Equal("ABC", s.service.BaseDocumentID("ABC"))
}

func (s *ReconciliationServiceSuite) TestRevisionsCollapseToOneKey() {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.stores.ledger.ReplaceLedger(s.ctx, []*ledger.SubmissionEntry{
		s.entry("10234", "client-a", at),
		s.entry("10234A", "client-a", at.AddDate(0, 0, 7)),
		s.entry("10234B", "client-a", at.AddDate(0, 0, 14)),
	}))

	index, err := s.service.BuildIndex(s.ctx, "run-1")
	s.NoError(err)

	owner, ok := index.ResolveOwner("10234")
	s.True(ok)
	s.Equal("client-a", owner)

	// No conflict, so no audit rows
	s.Empty(s.stores.audits.All())
}

func (s *ReconciliationServiceSuite) TestFrequencyWinsConflicts() {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.stores.ledger.ReplaceLedger(s.ctx, []*ledger.SubmissionEntry{
		s.entry("555", "client-a", at),
		s.entry("555A", "client-a", at.AddDate(0, 0, 1)),
		// The most recent submission names client-b, but frequency wins
		s.entry("555B", "client-b", at.AddDate(0, 0, 2)),
	}))

	index, err := s.service.BuildIndex(s.ctx, "run-1")
	s.NoError(err)

	owner, ok := index.ResolveOwner("555")
	s.True(ok)
	s.Equal("client-a", owner)

	audits, err := s.stores.audits.ListByRun(s.ctx, "run-1")
	s.NoError(err)
	s.Require().Len(audits, 1)
	s.Equal("555", audits[0].NaturalKey)
	s.Equal("client-a", audits[0].ChosenEntityID)
	s.Equal("most_frequent", audits[0].Reason)
	s.Len(audits[0].Candidates, 2)
}

func (s *ReconciliationServiceSuite) TestRecencyBreaksFrequencyTies() {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.stores.ledger.ReplaceLedger(s.ctx, []*ledger.SubmissionEntry{
		s.entry("777", "client-a", at),
		s.entry("777A", "client-b", at.AddDate(0, 0, 5)),
	}))

	index, err := s.service.BuildIndex(s.ctx, "run-1")
	s.NoError(err)

	owner, ok := index.ResolveOwner("777")
	s.True(ok)
	s.Equal("client-b", owner)

	audits, err := s.stores.audits.ListByRun(s.ctx, "run-1")
	s.NoError(err)
	s.Require().Len(audits, 1)
	s.Equal("most_recent_tie_break", audits[0].Reason)
}

func (s *ReconciliationServiceSuite) TestMappingChainResolvesOwner() {
	s.Require().NoError(s.stores.ledger.ReplacePositionMappings(s.ctx, []*ledger.PositionMapping{
		{ID: "pm-1", PositionCode: "pos-42", BuildingCode: "bldg-7", BaseModel: types.GetDefaultBaseModel(s.ctx)},
	}))
	s.Require().NoError(s.stores.ledger.ReplaceBuildingMappings(s.ctx, []*ledger.BuildingMapping{
		{ID: "bm-1", BuildingCode: "bldg-7", OwningEntityID: "client-z", BaseModel: types.GetDefaultBaseModel(s.ctx)},
	}))

	index, err := s.service.BuildIndex(s.ctx, "run-1")
	s.NoError(err)

	owner, ok := index.ResolveOwner("pos-42")
	s.True(ok)
	s.Equal("client-z", owner)

	_, ok = index.ResolveOwner("pos-unknown")
	s.False(ok)
}

func (s *ReconciliationServiceSuite) TestLedgerWinsOverMappings() {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.stores.ledger.ReplaceLedger(s.ctx, []*ledger.SubmissionEntry{
		s.entry("pos-42", "client-from-ledger", at),
	}))
	s.Require().NoError(s.stores.ledger.ReplacePositionMappings(s.ctx, []*ledger.PositionMapping{
		{ID: "pm-1", PositionCode: "pos-42", BuildingCode: "bldg-7", BaseModel: types.GetDefaultBaseModel(s.ctx)},
	}))
	s.Require().NoError(s.stores.ledger.ReplaceBuildingMappings(s.ctx, []*ledger.BuildingMapping{
		{ID: "bm-1", BuildingCode: "bldg-7", OwningEntityID: "client-from-mapping", BaseModel: types.GetDefaultBaseModel(s.ctx)},
	}))

	index, err := s.service.BuildIndex(s.ctx, "run-1")
	s.NoError(err)

	owner, ok := index.ResolveOwner("pos-42")
	s.True(ok)
	s.Equal("client-from-ledger", owner)
}

func (s *ReconciliationServiceSuite) TestDuplicatePositionMappingsAudited() {
	base := types.GetDefaultBaseModel(s.ctx)
	older := base
	older.UpdatedAt = older.UpdatedAt.Add(-time.Hour)

	s.Require().NoError(s.stores.ledger.ReplacePositionMappings(s.ctx, []*ledger.PositionMapping{
		{ID: "pm-1", PositionCode: "pos-9", BuildingCode: "bldg-a", BaseModel: older},
		{ID: "pm-2", PositionCode: "pos-9", BuildingCode: "bldg-a", BaseModel: base},
		{ID: "pm-3", PositionCode: "pos-9", BuildingCode: "bldg-b", BaseModel: base},
	}))
	s.Require().NoError(s.stores.ledger.ReplaceBuildingMappings(s.ctx, []*ledger.BuildingMapping{
		{ID: "bm-1", BuildingCode: "bldg-a", OwningEntityID: "client-a", BaseModel: base},
		{ID: "bm-2", BuildingCode: "bldg-b", OwningEntityID: "client-b", BaseModel: base},
	}))

	index, err := s.service.BuildIndex(s.ctx, "run-1")
	s.NoError(err)

	// bldg-a appears twice for pos-9, bldg-b once
	owner, ok := index.ResolveOwner("pos-9")
	s.True(ok)
	s.Equal("client-a", owner)

	audits, err := s.stores.audits.ListByRun(s.ctx, "run-1")
	s.NoError(err)
	s.Require().Len(audits, 1)
	s.Equal("pos-9", audits[0].NaturalKey)
}

func (s *ReconciliationServiceSuite) TestEmptyOwnershipDataIsFatal() {
	_, err := s.service.BuildIndex(s.ctx, "run-1")
	s.Error(err)
}

func (s *ReconciliationServiceSuite) TestDeterministicAcrossRebuilds() {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s.Require().NoError(s.stores.ledger.ReplaceLedger(s.ctx, []*ledger.SubmissionEntry{
		s.entry("888", "client-a", at),
		s.entry("888A", "client-b", at),
	}))

	first, err := s.service.BuildIndex(s.ctx, "run-1")
	s.NoError(err)
	second, err := s.service.BuildIndex(s.ctx, "run-2")
	s.NoError(err)

	a, _ := first.ResolveOwner("888")
	b, _ := second.ResolveOwner("888")
	s.Equal(a, b)
}
