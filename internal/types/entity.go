package types

import (
	ierr "github.com/shiftledger/shiftledger/internal/errors"
)

// EntityType identifies which slowly-changing dimension a record belongs to
type EntityType string

const (
	EntityTypeEmployee EntityType = "employee"
	EntityTypeClient   EntityType = "client"
	EntityTypePosition EntityType = "position"
)

func (t EntityType) Validate() error {
	switch t {
	case EntityTypeEmployee, EntityTypeClient, EntityTypePosition:
		return nil
	default:
		return ierr.NewError("invalid entity type").
			WithHintf("unknown entity type %s", t).
			Mark(ierr.ErrValidation)
	}
}

func (t EntityType) String() string {
	return string(t)
}
