package node

import (
	"errors"
	"fmt"
)

// ErrDuplicateTypeID is returned by Registry.Register when typeID is
// already registered.
var ErrDuplicateTypeID = errors.New("node: duplicate type id")

// ErrUnknownTypeID is returned by Registry.CreateInstance when typeID has
// no registered factory.
var ErrUnknownTypeID = errors.New("node: unknown type id")

// ErrMissingRequiredInput is returned by Validate when a Required input
// slot has no bound resource.
var ErrMissingRequiredInput = errors.New("node: missing required input")

// SchemaMismatchError reports why a slot failed schema validation.
type SchemaMismatchError struct {
	Slot   string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("node: schema mismatch at slot %q: %s", e.Slot, e.Reason)
}
