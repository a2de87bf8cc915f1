package ledger

import (
	"time"

	"github.com/shiftledger/shiftledger/internal/types"
)

// SubmissionEntry is one row of the authoritative billing-submission ledger
// (one row per submitted document). The ledger is the single source of truth
// for entity ownership and supersedes any upstream hierarchy labeling. A
// fresh feed load fully replaces the prior view.
type SubmissionEntry struct {
	ID             string    `db:"id" json:"id"`
	DocumentID     string    `db:"document_id" json:"document_id"` // may carry a revision suffix, kept verbatim
	BaseDocumentID string    `db:"base_document_id" json:"base_document_id"`
	OwningEntityID string    `db:"owning_entity_id" json:"owning_entity_id"`
	SubmittedAt    time.Time `db:"submitted_at" json:"submitted_at"`
	types.BaseModel
}

// BuildingMapping maps a building/location code to its owning entity
type BuildingMapping struct {
	ID             string `db:"id" json:"id"`
	BuildingCode   string `db:"building_code" json:"building_code"`
	OwningEntityID string `db:"owning_entity_id" json:"owning_entity_id"`
	types.BaseModel
}

// PositionMapping maps a job/position code to a building. The upstream feed
// is noisy: the same position code can appear with different buildings, and
// those duplicates must resolve to one target via the audited policy in the
// reconciliation engine.
type PositionMapping struct {
	ID           string `db:"id" json:"id"`
	PositionCode string `db:"position_code" json:"position_code"`
	BuildingCode string `db:"building_code" json:"building_code"`
	types.BaseModel
}
