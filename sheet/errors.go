package sheet

import (
	"errors"
	"fmt"
)

var (
	// ErrTableNotFound is returned when a table has not been provisioned.
	ErrTableNotFound = errors.New("table not found")

	// ErrRowOutOfRange is returned when an update targets a row that does not exist.
	ErrRowOutOfRange = errors.New("row out of range")

	// ErrUnknownColumn is returned when an update names a column the header lacks.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrMalformedUpdate is returned when columns and values do not line up.
	ErrMalformedUpdate = errors.New("malformed cell update")

	// ErrConflict is returned when CellUpdate.Expect does not match the stored cells.
	ErrConflict = errors.New("cell values changed concurrently")
)

// ConflictError reports which precondition failed.
type ConflictError struct {
	Row      int
	Column   string
	Expected string
	Actual   string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("row %d column %s: expected %q, found %q", e.Row, e.Column, e.Expected, e.Actual)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }
