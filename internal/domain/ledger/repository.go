package ledger

import (
	"context"
)

// Repository defines the interface for the submission ledger and the
// supplementary mapping tables
type Repository interface {
	// ReplaceLedger atomically replaces the full ledger view with a fresh
	// feed load. No incremental diffing: the feed is authoritative.
	ReplaceLedger(ctx context.Context, entries []*SubmissionEntry) error

	// ListLedger returns every ledger entry
	ListLedger(ctx context.Context) ([]*SubmissionEntry, error)

	// ReplaceBuildingMappings replaces the building to owning-entity table
	ReplaceBuildingMappings(ctx context.Context, mappings []*BuildingMapping) error

	// ListBuildingMappings returns every building mapping
	ListBuildingMappings(ctx context.Context) ([]*BuildingMapping, error)

	// ReplacePositionMappings replaces the position to building table,
	// duplicates included; resolution happens at index build time
	ReplacePositionMappings(ctx context.Context, mappings []*PositionMapping) error

	// ListPositionMappings returns every position mapping
	ListPositionMappings(ctx context.Context) ([]*PositionMapping, error)
}
