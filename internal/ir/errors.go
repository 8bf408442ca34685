package ir

import (
	"errors"
	"fmt"
)

// Structural errors reported by graph primitives. Callers match them with
// errors.Is; messages carry the offending operation name and positions.
var (
	// ErrNotFound is wrapped by *NotFoundError.
	ErrNotFound = errors.New("operation not found")

	// ErrIndexOutOfRange is returned for insert/erase positions outside the body.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrAlreadyAttached is returned when inserting an operation or block
	// that already has a parent.
	ErrAlreadyAttached = errors.New("already attached")

	// ErrNilOperand is returned when a nil value is bound to an operand.
	ErrNilOperand = errors.New("nil operand")

	// ErrNotSingleResult is returned when an operation with zero or several
	// results is used where one value is expected.
	ErrNotSingleResult = errors.New("operation does not have exactly one result")

	// ErrSegmentMismatch is returned when segment sizes do not cover the
	// operand or result list.
	ErrSegmentMismatch = errors.New("segment sizes do not match values")

	// ErrMalformedOperation is returned for operation state that cannot
	// describe an operation at all.
	ErrMalformedOperation = errors.New("malformed operation")
)

// NotFoundError is returned by Block.IndexOf for an operation the block
// does not own. It matches ErrNotFound.
type NotFoundError struct {
	// Op is the operation that was looked up; it may be nil.
	Op *Operation
}

func (e *NotFoundError) Error() string {
	name := "<nil>"
	if e.Op != nil {
		name = e.Op.name
	}
	return fmt.Sprintf("%v: %s is not in this block", ErrNotFound, name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
