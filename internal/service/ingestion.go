package service

import (
	"context"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/shiftledger/shiftledger/internal/domain/batchrun"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/source"
	"github.com/shiftledger/shiftledger/internal/types"
)

// IngestionService orchestrates scheduled ETL runs: fetch raw shifts per
// region, normalize them, resolve ownership against the ledger index and
// load facts. Regions run in parallel; the date range of a run is processed
// as chronological subwindows so a mid-run failure leaves a well-defined
// resume point.
type IngestionService interface {
	// Run ingests the window for every given region concurrently and
	// returns one run record per region
	Run(ctx context.Context, regions []string, window types.DateRange) ([]*batchrun.Run, error)

	// RunRegion ingests one region's window. The returned run carries the
	// final counters and state even when an error is also returned.
	RunRegion(ctx context.Context, region string, window types.DateRange) (*batchrun.Run, error)

	// RefreshLedger replaces the stored submission ledger and mapping
	// tables with a fresh pull from the feed
	RefreshLedger(ctx context.Context) (*LedgerRefreshResult, error)
}

// LedgerRefreshResult reports the row counts of a ledger refresh
type LedgerRefreshResult struct {
	LedgerEntries    int `json:"ledger_entries"`
	BuildingMappings int `json:"building_mappings"`
	PositionMappings int `json:"position_mappings"`
}

type ingestionService struct {
	ServiceParams

	reconciliation ReconciliationService
	factLoader     FactLoaderService
	dataQuality    DataQualityService

	shifts *source.RetryingSource
	feed   *source.RetryingLedgerSource
}

func NewIngestionService(
	params ServiceParams,
	reconciliationService ReconciliationService,
	factLoader FactLoaderService,
	dataQuality DataQualityService,
) IngestionService {
	maxRetries := params.Config.Ingestion.SourceMaxRetries
	return &ingestionService{
		ServiceParams:  params,
		reconciliation: reconciliationService,
		factLoader:     factLoader,
		dataQuality:    dataQuality,
		shifts:         source.NewRetryingSource(params.SchedulingSource, maxRetries, params.Logger),
		feed:           source.NewRetryingLedgerSource(params.LedgerSource, maxRetries, params.Logger),
	}
}

func (s *ingestionService) Run(ctx context.Context, regions []string, window types.DateRange) ([]*batchrun.Run, error) {
	if len(regions) == 0 {
		return nil, ierr.NewError("no regions given").
			WithHint("An ingestion run needs at least one region").
			Mark(ierr.ErrValidation)
	}

	p := pool.NewWithResults[*batchrun.Run]().
		WithContext(ctx).
		WithMaxGoroutines(s.Config.Ingestion.RegionParallelism)

	for _, region := range regions {
		region := region
		p.Go(func(ctx context.Context) (*batchrun.Run, error) {
			return s.RunRegion(ctx, region, window)
		})
	}

	return p.Wait()
}

func (s *ingestionService) RunRegion(ctx context.Context, region string, window types.DateRange) (*batchrun.Run, error) {
	if region == "" {
		return nil, ierr.NewError("missing region").
			Mark(ierr.ErrValidation)
	}
	if err := window.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Ingestion window is invalid").
			Mark(ierr.ErrValidation)
	}

	subwindows := window.Subwindows(s.Config.Ingestion.SubwindowDays)

	run := &batchrun.Run{
		ID:              types.GenerateUUIDWithPrefix(types.UUID_PREFIX_RUN),
		Region:          region,
		WindowStart:     window.Start,
		WindowEnd:       window.End,
		State:           types.BatchRunStateRunning,
		SubwindowsTotal: len(subwindows),
		StartedAt:       time.Now().UTC(),
		BaseModel:       types.GetDefaultBaseModel(ctx),
	}
	if err := s.BatchRunRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	s.Logger.Infow("ingestion run started",
		"run_id", run.ID,
		"region", region,
		"window", window.String(),
		"subwindows", len(subwindows),
	)

	// The ownership index is built once and held constant for the whole
	// run; a ledger refresh landing mid-run affects the next run only
	index, err := s.reconciliation.BuildIndex(ctx, run.ID)
	if err != nil {
		return run, s.failRun(ctx, run, err)
	}

	for _, sub := range subwindows {
		if ctx.Err() != nil {
			return run, s.abortRun(ctx, run, ctx.Err())
		}

		batchID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BATCH)

		raws, err := s.shifts.FetchShifts(ctx, region, sub)
		if err != nil {
			return run, s.failRun(ctx, run, err)
		}

		records, issues := source.NormalizeShifts(raws)
		for _, issue := range issues {
			if derr := s.dataQuality.Record(ctx, batchID, sourceTableShifts, issue.RecordID, issue.IssueType, issue.Description, issue.Payload); derr != nil {
				return run, s.failRun(ctx, run, derr)
			}
		}
		run.Rejected += len(issues)

		result, err := s.factLoader.LoadBatch(ctx, records, index, batchID)
		if err != nil {
			run.ApplyResult(result)
			return run, s.failRun(ctx, run, err)
		}
		run.ApplyResult(result)

		// Persist progress after every subwindow so an operator sees how
		// far a long run got
		if err := s.BatchRunRepo.Update(ctx, run); err != nil {
			return run, s.failRun(ctx, run, err)
		}

		s.Logger.Infow("subwindow loaded",
			"run_id", run.ID,
			"region", region,
			"subwindow", sub.String(),
			"inserted", result.Inserted,
			"rejected", result.Rejected,
		)
	}

	now := time.Now().UTC()
	run.State = types.BatchRunStateCompleted
	run.CompletedAt = &now
	if err := s.BatchRunRepo.Update(ctx, run); err != nil {
		return run, err
	}

	s.Logger.Infow("ingestion run completed",
		"run_id", run.ID,
		"region", region,
		"inserted", run.Inserted,
		"rejected", run.Rejected,
		"duplicates", run.Duplicates,
		"overwritten", run.Overwritten,
		"skipped", run.Skipped,
	)
	return run, nil
}

func (s *ingestionService) RefreshLedger(ctx context.Context) (*LedgerRefreshResult, error) {
	entries, err := s.feed.FetchLedger(ctx)
	if err != nil {
		return nil, err
	}
	buildings, err := s.feed.FetchBuildingMappings(ctx)
	if err != nil {
		return nil, err
	}
	positions, err := s.feed.FetchPositionMappings(ctx)
	if err != nil {
		return nil, err
	}

	// The feed carries document ids verbatim; the stripped base id is
	// derived once here so every index build sees it precomputed
	for _, e := range entries {
		e.BaseDocumentID = s.reconciliation.BaseDocumentID(e.DocumentID)
	}

	if err := s.LedgerRepo.ReplaceLedger(ctx, entries); err != nil {
		return nil, err
	}
	if err := s.LedgerRepo.ReplaceBuildingMappings(ctx, buildings); err != nil {
		return nil, err
	}
	if err := s.LedgerRepo.ReplacePositionMappings(ctx, positions); err != nil {
		return nil, err
	}

	result := &LedgerRefreshResult{
		LedgerEntries:    len(entries),
		BuildingMappings: len(buildings),
		PositionMappings: len(positions),
	}
	s.Logger.Infow("ledger refreshed",
		"ledger_entries", result.LedgerEntries,
		"building_mappings", result.BuildingMappings,
		"position_mappings", result.PositionMappings,
	)
	return result, nil
}

// failRun marks the run failed, records the cause and reports fatal errors
// upstream. The original error is always returned to the caller.
func (s *ingestionService) failRun(ctx context.Context, run *batchrun.Run, cause error) error {
	now := time.Now().UTC()
	run.State = types.BatchRunStateFailed
	run.ErrorMessage = cause.Error()
	run.CompletedAt = &now

	if ierr.IsFatal(cause) && s.Sentry != nil {
		s.Sentry.CaptureException(cause)
	}

	if err := s.BatchRunRepo.Update(ctx, run); err != nil {
		s.Logger.Errorw("failed to persist failed run state",
			"run_id", run.ID,
			"error", err,
		)
	}

	s.Logger.Errorw("ingestion run failed",
		"run_id", run.ID,
		"region", run.Region,
		"subwindows_done", run.SubwindowsDone,
		"error", cause,
	)
	return cause
}

// abortRun records a cancellation between subwindows. Facts already loaded
// stay; the next run over the same window is idempotent past them.
func (s *ingestionService) abortRun(ctx context.Context, run *batchrun.Run, cause error) error {
	now := time.Now().UTC()
	run.State = types.BatchRunStateAborted
	run.ErrorMessage = cause.Error()
	run.CompletedAt = &now

	// The run context is already cancelled, persist with a detached one
	updateCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.BatchRunRepo.Update(updateCtx, run); err != nil {
		s.Logger.Errorw("failed to persist aborted run state",
			"run_id", run.ID,
			"error", err,
		)
	}

	s.Logger.Warnw("ingestion run aborted",
		"run_id", run.ID,
		"region", run.Region,
		"subwindows_done", run.SubwindowsDone,
	)
	return cause
}
