package rewrite

import (
	"errors"
	"fmt"

	"github.com/roach88/irkit/internal/ir"
)

var (
	// ErrNoParent is wrapped by *NoParentError.
	ErrNoParent = errors.New("operation has no parent block")

	// ErrInvalidReplacement is returned when a replacement operation is nil,
	// repeated, or is the operation being replaced.
	ErrInvalidReplacement = errors.New("invalid replacement operation")
)

// NoParentError reports an erase or replace of an operation that is not
// in a block. It matches ErrNoParent.
type NoParentError struct {
	Op *ir.Operation

	// Action is "erase" or "replace".
	Action string
}

func (e *NoParentError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Action, e.Op.Name(), ErrNoParent)
}

func (e *NoParentError) Unwrap() error { return ErrNoParent }

// DanglingUseError reports a safe erase of an operation whose result is
// still referenced.
type DanglingUseError struct {
	// Op is the operation that was not erased.
	Op *ir.Operation

	// Result is the index of the first result that still has uses.
	Result int

	// Uses is the number of uses remaining on that result.
	Uses int
}

func (e *DanglingUseError) Error() string {
	return fmt.Sprintf("cannot erase %s: result %d still has %d use(s)", e.Op.Name(), e.Result, e.Uses)
}

// ArityMismatchError reports a replacement whose result count differs from
// the replaced operation's.
type ArityMismatchError struct {
	Op       *ir.Operation
	Expected int
	Got      int
}

func (e *ArityMismatchError) Error() string {
	return fmt.Sprintf("replace %s: expected %d new results, but got %d", e.Op.Name(), e.Expected, e.Got)
}

// IsDanglingUse reports whether err is a *DanglingUseError.
func IsDanglingUse(err error) bool {
	var de *DanglingUseError
	return errors.As(err, &de)
}

// IsNoParent reports whether err is a *NoParentError.
func IsNoParent(err error) bool {
	var ne *NoParentError
	return errors.As(err, &ne)
}

// IsArityMismatch reports whether err is an *ArityMismatchError.
func IsArityMismatch(err error) bool {
	var ae *ArityMismatchError
	return errors.As(err, &ae)
}
