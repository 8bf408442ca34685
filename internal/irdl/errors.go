package irdl

import (
	"errors"
	"fmt"

	"github.com/roach88/irkit/internal/ir"
)

var (
	// ErrRegistryFrozen is returned when registering after Freeze.
	ErrRegistryFrozen = errors.New("registry is frozen")

	// ErrDuplicateKind is returned when a dialect or kind name is taken.
	ErrDuplicateKind = errors.New("duplicate kind")

	// ErrInvalidKindName is returned for names not of the form "dialect.kind".
	ErrInvalidKindName = errors.New("invalid kind name")
)

// SchemaArityError reports a builder call whose operands or result types
// do not fit the kind's slot layout.
//
// Got is -1 when a supplied producer could not be resolved to a value; the
// resolution error is available through errors.Unwrap.
type SchemaArityError struct {
	Kind     string
	Slot     string
	Expected int
	Got      int
	cause    error
}

func (e *SchemaArityError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Slot, e.cause)
	}
	return fmt.Sprintf("%s: %s: expected %d, got %d", e.Kind, e.Slot, e.Expected, e.Got)
}

func (e *SchemaArityError) Unwrap() error { return e.cause }

// UnknownKindError reports a lookup of an unregistered dialect, operation
// or type kind.
type UnknownKindError struct {
	Name string
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown kind %q", e.Name)
}

// VerifyError is a semantic failure found by verification. It names the
// offending operation and carries a human-readable message.
type VerifyError struct {
	Op      *ir.Operation
	Message string
	cause   error
}

func (e *VerifyError) Error() string {
	if e.Op == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Op.Name(), e.Message)
}

func (e *VerifyError) Unwrap() error { return e.cause }

// IsSchemaArity reports whether err is a *SchemaArityError.
func IsSchemaArity(err error) bool {
	var se *SchemaArityError
	return errors.As(err, &se)
}

// IsUnknownKind reports whether err is an *UnknownKindError.
func IsUnknownKind(err error) bool {
	var ue *UnknownKindError
	return errors.As(err, &ue)
}

// AsVerifyError extracts a *VerifyError from err.
func AsVerifyError(err error) (*VerifyError, bool) {
	var ve *VerifyError
	ok := errors.As(err, &ve)
	return ve, ok
}

// ToVerifyError converts err into a diagnostic for op. A *VerifyError in
// err's chain is returned as is, with Op filled in when missing; any other
// error becomes the cause of a new *VerifyError.
func ToVerifyError(op *ir.Operation, err error) *VerifyError {
	if ve, ok := AsVerifyError(err); ok {
		if ve.Op == nil {
			ve.Op = op
		}
		return ve
	}
	return &VerifyError{Op: op, Message: err.Error(), cause: err}
}
