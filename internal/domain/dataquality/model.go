package dataquality

import (
	"time"

	"github.com/shiftledger/shiftledger/internal/types"
)

// Record is one rejected or suspect source row, tagged with batch lineage.
// The table is an append-only sink; reporting queries it directly and the
// collector exposes no read API.
type Record struct {
	ID          string          `db:"id" json:"id"`
	BatchID     string          `db:"batch_id" json:"batch_id"`
	SourceTable string          `db:"source_table" json:"source_table"`
	RecordID    string          `db:"record_id" json:"record_id"`
	IssueType   types.IssueType `db:"issue_type" json:"issue_type"`
	Description string          `db:"description" json:"description"`
	Payload     string          `db:"payload" json:"payload"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
