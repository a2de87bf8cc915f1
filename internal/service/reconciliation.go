package service

import (
	"context"
	"regexp"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/shiftledger/shiftledger/internal/domain/ledger"
	"github.com/shiftledger/shiftledger/internal/domain/reconciliation"
	ierr "github.com/shiftledger/shiftledger/internal/errors"
	"github.com/shiftledger/shiftledger/internal/types"
)

const (
	reasonUnambiguous  = "single_candidate"
	reasonMostFrequent = "most_frequent"
	reasonMostRecent   = "most_recent_tie_break"
)

// ReconciliationService derives canonical entity ownership from the
// authoritative submission ledger. The ledger supersedes any upstream
// hierarchy labeling; where a natural key appears with conflicting owners,
// the most frequently associated owner wins and ties break to the most
// recent submission. Every such resolution is persisted for operator audit.
type ReconciliationService interface {
	// BuildIndex constructs the immutable per-run ownership lookup from
	// the current ledger and mapping tables, persisting an audit row for
	// every conflicted key it resolved.
	BuildIndex(ctx context.Context, runID string) (*reconciliation.OwnershipIndex, error)

	// BaseDocumentID strips the configured revision-suffix pattern from a
	// document id, e.g. "10234A" -> "10234". The full original identifier
	// is always preserved in stored records.
	BaseDocumentID(documentID string) string
}

type reconciliationService struct {
	ServiceParams

	suffixPattern *regexp.Regexp
}

func NewReconciliationService(params ServiceParams) (ReconciliationService, error) {
	pattern := params.Config.Reconciliation.RevisionSuffixPattern
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("invalid revision suffix pattern %q", pattern).
			Mark(ierr.ErrValidation)
	}
	return &reconciliationService{ServiceParams: params, suffixPattern: re}, nil
}

func (s *reconciliationService) BaseDocumentID(documentID string) string {
	base := s.suffixPattern.ReplaceAllString(documentID, "")
	if base == "" {
		// A pure-alphabetic id has no revision suffix to strip
		return documentID
	}
	return base
}

func (s *reconciliationService) BuildIndex(ctx context.Context, runID string) (*reconciliation.OwnershipIndex, error) {
	entries, err := s.LedgerRepo.ListLedger(ctx)
	if err != nil {
		return nil, err
	}
	buildings, err := s.LedgerRepo.ListBuildingMappings(ctx)
	if err != nil {
		return nil, err
	}
	positions, err := s.LedgerRepo.ListPositionMappings(ctx)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 && len(buildings) == 0 && len(positions) == 0 {
		return nil, ierr.NewError("no ownership data available").
			WithHint("The submission ledger and mapping tables are all empty; refresh the ledger feed first").
			Mark(ierr.ErrInvalidOperation)
	}

	var audits []*reconciliation.ResolutionAudit

	byDocument := s.resolveLedger(entries, runID, &audits)
	byBuilding := s.resolveBuildings(buildings, runID, &audits)
	byPosition := s.resolvePositions(positions, runID, &audits)

	if len(audits) > 0 {
		if err := s.AuditRepo.CreateBulk(ctx, audits); err != nil {
			return nil, err
		}
	}

	s.Logger.Infow("built ownership index",
		"run_id", runID,
		"ledger_keys", len(byDocument),
		"building_keys", len(byBuilding),
		"position_keys", len(byPosition),
		"conflicts_resolved", len(audits),
	)

	return reconciliation.NewOwnershipIndex(byDocument, byPosition, byBuilding), nil
}

// resolveLedger collapses ledger submissions to one owner per base document
// id
func (s *reconciliationService) resolveLedger(entries []*ledger.SubmissionEntry, runID string, audits *[]*reconciliation.ResolutionAudit) map[string]string {
	grouped := lo.GroupBy(entries, func(e *ledger.SubmissionEntry) string {
		if e.BaseDocumentID != "" {
			return e.BaseDocumentID
		}
		return s.BaseDocumentID(e.DocumentID)
	})

	out := make(map[string]string, len(grouped))
	for key, group := range grouped {
		candidates := candidatesFromSubmissions(group)
		chosen, reason := pickCandidate(candidates)
		out[key] = chosen.OwningEntityID

		if len(candidates) > 1 {
			*audits = append(*audits, s.newAudit(runID, key, candidates, chosen, reason))
		}
	}
	return out
}

func (s *reconciliationService) resolveBuildings(mappings []*ledger.BuildingMapping, runID string, audits *[]*reconciliation.ResolutionAudit) map[string]string {
	grouped := lo.GroupBy(mappings, func(m *ledger.BuildingMapping) string { return m.BuildingCode })

	out := make(map[string]string, len(grouped))
	for code, group := range grouped {
		candidates := candidatesFromValues(group,
			func(m *ledger.BuildingMapping) string { return m.OwningEntityID },
			func(m *ledger.BuildingMapping) time.Time { return m.UpdatedAt },
		)
		chosen, reason := pickCandidate(candidates)
		out[code] = chosen.OwningEntityID

		if len(candidates) > 1 {
			*audits = append(*audits, s.newAudit(runID, code, candidates, chosen, reason))
		}
	}
	return out
}

func (s *reconciliationService) resolvePositions(mappings []*ledger.PositionMapping, runID string, audits *[]*reconciliation.ResolutionAudit) map[string]string {
	grouped := lo.GroupBy(mappings, func(m *ledger.PositionMapping) string { return m.PositionCode })

	out := make(map[string]string, len(grouped))
	for code, group := range grouped {
		candidates := candidatesFromValues(group,
			func(m *ledger.PositionMapping) string { return m.BuildingCode },
			func(m *ledger.PositionMapping) time.Time { return m.UpdatedAt },
		)
		chosen, reason := pickCandidate(candidates)
		out[code] = chosen.OwningEntityID

		if len(candidates) > 1 {
			*audits = append(*audits, s.newAudit(runID, code, candidates, chosen, reason))
		}
	}
	return out
}

func (s *reconciliationService) newAudit(runID, naturalKey string, candidates []reconciliation.Candidate, chosen reconciliation.Candidate, reason string) *reconciliation.ResolutionAudit {
	return &reconciliation.ResolutionAudit{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_AUDIT),
		RunID:          runID,
		NaturalKey:     naturalKey,
		Candidates:     candidates,
		ChosenEntityID: chosen.OwningEntityID,
		Reason:         reason,
		CreatedAt:      time.Now().UTC(),
	}
}

func candidatesFromSubmissions(group []*ledger.SubmissionEntry) []reconciliation.Candidate {
	byOwner := make(map[string]*reconciliation.Candidate)
	for _, e := range group {
		c, ok := byOwner[e.OwningEntityID]
		if !ok {
			c = &reconciliation.Candidate{OwningEntityID: e.OwningEntityID}
			byOwner[e.OwningEntityID] = c
		}
		c.Frequency++
		if e.SubmittedAt.After(c.LastSubmission) {
			c.LastSubmission = e.SubmittedAt
		}
	}
	return sortedCandidates(byOwner)
}

// candidatesFromValues generalizes candidate counting over the mapping
// tables, which carry row update times instead of submission times
func candidatesFromValues[T any](group []T, value func(T) string, seenAt func(T) time.Time) []reconciliation.Candidate {
	byValue := make(map[string]*reconciliation.Candidate)
	for _, item := range group {
		v := value(item)
		c, ok := byValue[v]
		if !ok {
			c = &reconciliation.Candidate{OwningEntityID: v}
			byValue[v] = c
		}
		c.Frequency++
		if t := seenAt(item); t.After(c.LastSubmission) {
			c.LastSubmission = t
		}
	}
	return sortedCandidates(byValue)
}

// sortedCandidates orders by frequency desc, then recency desc, then id so
// resolution is reproducible regardless of input order
func sortedCandidates(byKey map[string]*reconciliation.Candidate) []reconciliation.Candidate {
	out := make([]reconciliation.Candidate, 0, len(byKey))
	for _, c := range byKey {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Frequency != out[j].Frequency {
			return out[i].Frequency > out[j].Frequency
		}
		if !out[i].LastSubmission.Equal(out[j].LastSubmission) {
			return out[i].LastSubmission.After(out[j].LastSubmission)
		}
		return out[i].OwningEntityID < out[j].OwningEntityID
	})
	return out
}

func pickCandidate(candidates []reconciliation.Candidate) (reconciliation.Candidate, string) {
	switch {
	case len(candidates) == 1:
		return candidates[0], reasonUnambiguous
	case candidates[0].Frequency > candidates[1].Frequency:
		return candidates[0], reasonMostFrequent
	default:
		return candidates[0], reasonMostRecent
	}
}
