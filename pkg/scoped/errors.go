package scoped

import "errors"

var (
	// ErrNotFound is returned when no visible row has the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrUnknownColumn is returned for a condition on a column the table does not declare.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInvalidTable is returned for an incomplete table definition.
	ErrInvalidTable = errors.New("invalid table definition")
)
