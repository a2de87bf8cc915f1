package types

// LoadResult summarizes the outcome of a single fact load batch.
// Duplicates and skips are idempotent no-ops, not errors; they are still
// counted so the post-run summary reflects everything the loader saw.
type LoadResult struct {
	Inserted    int `json:"inserted"`
	Rejected    int `json:"rejected"`
	Duplicates  int `json:"duplicates"`
	Overwritten int `json:"overwritten"`
	Skipped     int `json:"skipped"`
}

func (r *LoadResult) Add(other *LoadResult) {
	if other == nil {
		return
	}
	r.Inserted += other.Inserted
	r.Rejected += other.Rejected
	r.Duplicates += other.Duplicates
	r.Overwritten += other.Overwritten
	r.Skipped += other.Skipped
}

func (r *LoadResult) Total() int {
	return r.Inserted + r.Rejected + r.Duplicates + r.Overwritten + r.Skipped
}

// ResubmissionState is the outcome of tracking one incoming submission
type ResubmissionState string

const (
	ResubmissionStateNew        ResubmissionState = "new"
	ResubmissionStateUnchanged  ResubmissionState = "unchanged"
	ResubmissionStateSuperseded ResubmissionState = "superseded"
	ResubmissionStateStale      ResubmissionState = "stale"
)

// IssueType classifies a data quality rejection
type IssueType string

const (
	IssueTypeUnresolvedPeriod IssueType = "unresolved_period"
	IssueTypeUnresolvedOwner  IssueType = "unresolved_owner"
	IssueTypeMalformedRecord  IssueType = "malformed_record"
	IssueTypeMissingField     IssueType = "missing_field"
)

// BatchRunState is the lifecycle state of one ingestion run
type BatchRunState string

const (
	BatchRunStateRunning   BatchRunState = "running"
	BatchRunStateCompleted BatchRunState = "completed"
	BatchRunStateFailed    BatchRunState = "failed"
	BatchRunStateAborted   BatchRunState = "aborted"
)
