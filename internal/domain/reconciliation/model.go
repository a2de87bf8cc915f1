package reconciliation

import (
	"time"
)

// Candidate is one owning entity considered while resolving a conflicted
// natural key
type Candidate struct {
	OwningEntityID string    `json:"owning_entity_id"`
	Frequency      int       `json:"frequency"`
	LastSubmission time.Time `json:"last_submission"`
}

// ResolutionAudit records one deterministic conflict resolution: which
// candidates were considered for a natural key, which one won, and why.
// This is a first-class output for operator review, not a log line.
type ResolutionAudit struct {
	ID             string      `db:"id" json:"id"`
	RunID          string      `db:"run_id" json:"run_id"`
	NaturalKey     string      `db:"natural_key" json:"natural_key"`
	Candidates     []Candidate `db:"-" json:"candidates"`
	CandidatesJSON string      `db:"candidates" json:"-"`
	ChosenEntityID string      `db:"chosen_entity_id" json:"chosen_entity_id"`
	Reason         string      `db:"reason" json:"reason"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// OwnershipIndex is the immutable lookup built once per run from the
// authoritative ledger and the supplementary mappings. It is constructed,
// then only read; rebuild per run, never mutate in place.
type OwnershipIndex struct {
	byDocument map[string]string // base document id -> owning entity
	byPosition map[string]string // position code -> building code
	byBuilding map[string]string // building code -> owning entity
}

// NewOwnershipIndex builds an index from already-resolved lookup maps
func NewOwnershipIndex(byDocument, byPosition, byBuilding map[string]string) *OwnershipIndex {
	return &OwnershipIndex{
		byDocument: byDocument,
		byPosition: byPosition,
		byBuilding: byBuilding,
	}
}

// ResolveOwner derives the owning entity for a job/position code. It never
// errors: a missing code returns ok=false and the caller records a data
// quality event. The ledger wins over the building/position mappings.
func (idx *OwnershipIndex) ResolveOwner(code string) (string, bool) {
	if idx == nil || code == "" {
		return "", false
	}
	if owner, ok := idx.byDocument[code]; ok {
		return owner, true
	}
	if building, ok := idx.byPosition[code]; ok {
		if owner, ok := idx.byBuilding[building]; ok {
			return owner, true
		}
	}
	return "", false
}

// Size returns how many distinct keys the index can resolve, for run logs
func (idx *OwnershipIndex) Size() int {
	return len(idx.byDocument) + len(idx.byPosition)
}
