package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shiftledger/shiftledger/internal/domain/dimension"
	"github.com/shiftledger/shiftledger/internal/domain/reconciliation"
	"github.com/shiftledger/shiftledger/internal/domain/shift"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/types"
)

const sourceTableShifts = "shifts"

// Tracked attribute keys of the dimension stubs seeded by the loader
const (
	attrName   = "name"
	attrRegion = "region"
)

// FactLoaderService transforms normalized shift records into fact rows in
// the period-partitioned store. Referential completeness is enforced here:
// a record that resolves no billing period or no owning client is rejected
// to the data quality sink and never inserted — under-loading with a
// visible gap beats inserting unattributable facts.
type FactLoaderService interface {
	// LoadBatch loads one batch of records against the given per-run
	// ownership index. All operations are keyed and idempotent, so
	// re-running a partially loaded batch is safe.
	LoadBatch(ctx context.Context, records []*shift.Record, index *reconciliation.OwnershipIndex, batchID string) (*types.LoadResult, error)
}

type factLoaderService struct {
	ServiceParams

	periodService    PeriodService
	dimensionService DimensionService
	dataQuality      DataQualityService
}

func NewFactLoaderService(params ServiceParams, periodService PeriodService, dimensionService DimensionService, dataQuality DataQualityService) FactLoaderService {
	return &factLoaderService{
		ServiceParams:    params,
		periodService:    periodService,
		dimensionService: dimensionService,
		dataQuality:      dataQuality,
	}
}

func (s *factLoaderService) LoadBatch(ctx context.Context, records []*shift.Record, index *reconciliation.OwnershipIndex, batchID string) (*types.LoadResult, error) {
	result := &types.LoadResult{}
	if len(records) == 0 {
		return result, nil
	}

	// First pass: resolve periods so cross-batch duplicate lookups can be
	// batched per partition
	type resolved struct {
		record   *shift.Record
		periodID string
	}

	resolvedRecords := make([]resolved, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for _, record := range records {
		if err := record.Validate(); err != nil {
			if derr := s.reject(ctx, batchID, record, types.IssueTypeMissingField, err.Error()); derr != nil {
				return result, derr
			}
			result.Rejected++
			continue
		}

		periodID, err := s.periodService.ResolvePeriod(ctx, record.Date)
		if err != nil {
			if !ierr.IsPeriodNotFound(err) {
				return result, err
			}
			if derr := s.reject(ctx, batchID, record, types.IssueTypeUnresolvedPeriod, err.Error()); derr != nil {
				return result, derr
			}
			result.Rejected++
			continue
		}

		key := periodID + ":" + record.SourceShiftID
		if _, dup := seen[key]; dup {
			// Duplicate within the same load: idempotent skip
			result.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		resolvedRecords = append(resolvedRecords, resolved{record: record, periodID: periodID})
	}

	// Fetch existing facts per touched partition for cross-batch decisions
	byPeriod := lo.GroupBy(resolvedRecords, func(r resolved) string { return r.periodID })
	existing := make(map[string]map[string]*shift.Fact, len(byPeriod))
	for periodID, group := range byPeriod {
		ids := lo.Map(group, func(r resolved, _ int) string { return r.record.SourceShiftID })
		facts, err := s.ShiftRepo.GetByKeys(ctx, periodID, ids)
		if err != nil {
			return result, err
		}
		existing[periodID] = facts
	}

	now := time.Now().UTC()
	toInsert := make([]*shift.Fact, 0, len(resolvedRecords))

	for _, r := range resolvedRecords {
		record := r.record

		prior := existing[r.periodID][record.SourceShiftID]
		if prior != nil {
			switch {
			case prior.BatchID == batchID:
				// Re-delivery of the same batch: idempotent skip
				result.Duplicates++
				continue
			case prior.Locked:
				// Approved/locked rows are never overwritten
				s.Logger.Infow("skipping locked fact",
					"period_id", r.periodID,
					"source_shift_id", record.SourceShiftID,
					"existing_batch_id", prior.BatchID,
				)
				result.Skipped++
				continue
			}
		}

		clientID, ok := index.ResolveOwner(record.PositionCode)
		if !ok {
			if derr := s.reject(ctx, batchID, record, types.IssueTypeUnresolvedOwner,
				"position code "+record.PositionCode+" resolves no owning entity"); derr != nil {
				return result, derr
			}
			result.Rejected++
			continue
		}

		fact, err := s.buildFact(ctx, record, r.periodID, clientID, batchID, now)
		if err != nil {
			return result, err
		}

		toInsert = append(toInsert, fact)
		if prior != nil {
			result.Overwritten++
		} else {
			result.Inserted++
		}
	}

	if len(toInsert) > 0 {
		if err := s.ShiftRepo.BulkInsert(ctx, toInsert); err != nil {
			return result, err
		}
	}

	s.Logger.Infow("fact batch loaded",
		"batch_id", batchID,
		"inserted", result.Inserted,
		"rejected", result.Rejected,
		"duplicates", result.Duplicates,
		"overwritten", result.Overwritten,
		"skipped", result.Skipped,
	)
	return result, nil
}

// buildFact resolves dimension surrogate keys and derives measures. Stubs
// are auto-created on first sighting; enrichment happens out of band.
func (s *factLoaderService) buildFact(ctx context.Context, record *shift.Record, periodID, clientID, batchID string, now time.Time) (*shift.Fact, error) {
	employeeSK, err := s.dimensionService.EnsureCurrent(ctx, types.EntityTypeEmployee, record.EmployeeKey,
		dimension.Attributes{attrName: record.EmployeeName, attrRegion: record.Region}, batchID)
	if err != nil {
		return nil, err
	}

	positionSK, err := s.dimensionService.EnsureCurrent(ctx, types.EntityTypePosition, record.PositionCode,
		dimension.Attributes{attrName: record.PositionName, attrRegion: record.Region}, batchID)
	if err != nil {
		return nil, err
	}

	clientSK, err := s.dimensionService.EnsureCurrent(ctx, types.EntityTypeClient, clientID,
		dimension.Attributes{attrRegion: record.Region}, batchID)
	if err != nil {
		return nil, err
	}

	fact := &shift.Fact{
		PeriodID:       periodID,
		SourceShiftID:  record.SourceShiftID,
		Date:           record.Date,
		Region:         record.Region,
		EmployeeKey:    record.EmployeeKey,
		PositionCode:   record.PositionCode,
		ClientID:       clientID,
		EmployeeSK:     employeeSK,
		PositionSK:     positionSK,
		ClientSK:       clientSK,
		ScheduledHours: record.ScheduledHours,
		WorkedHours:    record.WorkedHours,
		ApprovedHours:  record.ApprovedHours,
		BillRate:       record.BillRate,
		PayRate:        record.PayRate,
		BatchID:        batchID,
		RawPayload:     record.RawPayload,
		IngestedAt:     now,
	}
	fact.ComputeMeasures()

	if err := fact.Validate(); err != nil {
		return nil, err
	}
	return fact, nil
}

func (s *factLoaderService) reject(ctx context.Context, batchID string, record *shift.Record, issueType types.IssueType, description string) error {
	return s.dataQuality.Record(ctx, batchID, sourceTableShifts, record.SourceShiftID, issueType, description, record.RawPayload)
}
