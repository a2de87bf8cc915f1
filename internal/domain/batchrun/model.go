package batchrun

import (
	"time"

	"github.com/shiftledger/shiftledger/internal/types"
)

// Run records one ingestion run: one region over one requested date range,
// processed as chronological subwindows. Its counters are the post-run
// summary that operators act on; benign no-ops like duplicates and locked
// skips are counted here, never raised as errors.
type Run struct {
	ID          string              `db:"id" json:"id"`
	Region      string              `db:"region" json:"region"`
	WindowStart time.Time           `db:"window_start" json:"window_start"`
	WindowEnd   time.Time           `db:"window_end" json:"window_end"`
	State       types.BatchRunState `db:"state" json:"state"`

	Inserted    int `db:"inserted" json:"inserted"`
	Rejected    int `db:"rejected" json:"rejected"`
	Duplicates  int `db:"duplicates" json:"duplicates"`
	Overwritten int `db:"overwritten" json:"overwritten"`
	Skipped     int `db:"skipped" json:"skipped"`

	SubwindowsTotal int `db:"subwindows_total" json:"subwindows_total"`
	SubwindowsDone  int `db:"subwindows_done" json:"subwindows_done"`

	ErrorMessage string     `db:"error_message" json:"error_message,omitempty"`
	StartedAt    time.Time  `db:"started_at" json:"started_at"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	types.BaseModel
}

// ApplyResult folds one subwindow load result into the run counters
func (r *Run) ApplyResult(result *types.LoadResult) {
	if result == nil {
		return
	}
	r.Inserted += result.Inserted
	r.Rejected += result.Rejected
	r.Duplicates += result.Duplicates
	r.Overwritten += result.Overwritten
	r.Skipped += result.Skipped
	r.SubwindowsDone++
}
