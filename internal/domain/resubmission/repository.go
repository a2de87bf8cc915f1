package resubmission

import (
	"context"
)

// Repository defines the interface for resubmission tracking persistence
type Repository interface {
	// GetByDocumentID returns the tracked record for a document, or
	// ErrNotFound if the document has never been seen
	GetByDocumentID(ctx context.Context, documentID string) (*Record, error)

	// Create inserts the first sighting of a document
	Create(ctx context.Context, record *Record) error

	// Update persists a supersede: new submission date, prior date, and
	// refreshed descriptive fields
	Update(ctx context.Context, record *Record) error
}
