package repository

import (
	"errors"
	"fmt"

	"campusapi/internal/database"
)

var (
	// ErrNotFound matches every *NotFoundError.
	ErrNotFound = errors.New("not found")
	// ErrProcessing matches every *ProcessingError.
	ErrProcessing = errors.New("processing error")
)

// StoreFailure marks a ProcessingError caused by the store itself
// (connection lost, disk full) rather than by the input.
const StoreFailure database.ViolationKind = "store"

// NotFoundError reports that no row of Entity has primary key ID.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %d not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ProcessingError reports a write that could not be applied. ID is zero
// when the row had no key yet.
type ProcessingError struct {
	Entity string
	ID     int64
	Op     string
	Kind   database.ViolationKind
	Reason string
}

func (e *ProcessingError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("cannot %s %s: %s", e.Op, e.Entity, e.Reason)
	}
	return fmt.Sprintf("cannot %s %s with id %d: %s", e.Op, e.Entity, e.ID, e.Reason)
}

func (e *ProcessingError) Is(target error) bool { return target == ErrProcessing }
