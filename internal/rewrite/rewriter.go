package rewrite

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/irkit/internal/ir"
)

// Rewriter erases and replaces attached operations while keeping block
// order and use sets consistent. Both primitives validate everything up
// front: a call that returns an error has not changed the graph.
//
// A Rewriter holds no graph state and may be reused, but like the graph
// itself it must not be used from more than one goroutine at a time.
type Rewriter struct {
	logger   *slog.Logger
	listener Listener
}

// Option configures a Rewriter.
type Option func(*Rewriter)

// WithLogger sets the logger for mutation events. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Rewriter) { r.logger = l }
}

// WithListener registers a listener notified after every successful mutation.
func WithListener(l Listener) Option {
	return func(r *Rewriter) { r.listener = l }
}

// New creates a Rewriter.
func New(opts ...Option) *Rewriter {
	r := &Rewriter{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type eraseConfig struct {
	safe bool
}

// EraseOption configures EraseOp.
type EraseOption func(*eraseConfig)

// Unsafe skips the check that the erased operation's results are unused.
// Any remaining uses point at a discarded value afterwards.
func Unsafe() EraseOption {
	return func(c *eraseConfig) { c.safe = false }
}

// EraseOp detaches op from its block and discards it.
//
// It fails with *NoParentError when op is detached, and by default with
// *DanglingUseError when a result of op is still used outside op itself.
// On success the uses held by op and its nested operations are dropped.
func (r *Rewriter) EraseOp(op *ir.Operation, opts ...EraseOption) error {
	cfg := eraseConfig{safe: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	block := op.Parent()
	if block == nil {
		return &NoParentError{Op: op, Action: "erase"}
	}
	if cfg.safe {
		if err := checkUnused(op, nil); err != nil {
			return err
		}
	}

	index, err := r.detach(block, op)
	if err != nil {
		return err
	}

	r.logger.Debug("erased operation",
		"op", op.Name(),
		"index", index,
		"safe", cfg.safe)
	if r.listener != nil {
		r.listener.OperationErased(EraseEvent{Op: op, Block: block, Index: index, Unsafe: !cfg.safe})
	}
	return nil
}

type replaceConfig struct {
	safe       bool
	explicit   bool
	newResults []*ir.Value
}

// ReplaceOption configures ReplaceOp.
type ReplaceOption func(*replaceConfig)

// WithNewResults gives the value replacing each result of the old
// operation, in result order. A nil entry means the result has no
// replacement; its uses must already be gone unless UnsafeErase is set.
func WithNewResults(vals ...*ir.Value) ReplaceOption {
	return func(c *replaceConfig) {
		c.explicit = true
		c.newResults = slices.Clone(vals)
	}
}

// UnsafeErase lets ReplaceOp discard the old operation even if results
// without a replacement are still used.
func UnsafeErase() ReplaceOption {
	return func(c *replaceConfig) { c.safe = false }
}

// ReplaceOp replaces op with newOps, which take op's place in its block as
// a contiguous run in the given order. newOps may be empty.
//
// Without WithNewResults, op's results are replaced by the results of the
// last new operation (none when newOps is empty). Every use of a replaced
// result is redirected, including uses held by newOps.
//
// Errors: *NoParentError if op is detached; ErrInvalidReplacement or
// ir.ErrAlreadyAttached for unusable new operations; *ArityMismatchError if
// the replacement count differs from op's result count; *DanglingUseError
// if, with safe erase, a result without replacement is still used.
func (r *Rewriter) ReplaceOp(op *ir.Operation, newOps []*ir.Operation, opts ...ReplaceOption) error {
	cfg := replaceConfig{safe: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	block := op.Parent()
	if block == nil {
		return &NoParentError{Op: op, Action: "replace"}
	}
	if err := checkNewOps(op, newOps); err != nil {
		return err
	}

	newResults := cfg.newResults
	if !cfg.explicit {
		newResults = nil
		if len(newOps) > 0 {
			newResults = newOps[len(newOps)-1].Results()
		}
	}
	if len(newResults) != op.NumResults() {
		return &ArityMismatchError{Op: op, Expected: op.NumResults(), Got: len(newResults)}
	}
	if cfg.safe {
		if err := checkUnused(op, newResults); err != nil {
			return err
		}
	}

	for i, old := range op.Results() {
		if repl := newResults[i]; repl != nil {
			old.ReplaceAllUsesWith(repl)
		}
	}

	index, err := r.detach(block, op)
	if err != nil {
		return err
	}
	for i, n := range newOps {
		if err := block.InsertOperation(index+i, n); err != nil {
			return fmt.Errorf("replace %s: insert %s: %w", op.Name(), n.Name(), err)
		}
	}

	r.logger.Debug("replaced operation",
		"op", op.Name(),
		"index", index,
		"new_ops", len(newOps),
		"safe", cfg.safe)
	if r.listener != nil {
		r.listener.OperationReplaced(ReplaceEvent{
			Op:     op,
			NewOps: slices.Clone(newOps),
			Block:  block,
			Index:  index,
			Unsafe: !cfg.safe,
		})
	}
	return nil
}

// detach removes op from block and drops the uses it holds.
func (r *Rewriter) detach(block *ir.Block, op *ir.Operation) (int, error) {
	index, err := block.IndexOf(op)
	if err != nil {
		return -1, err
	}
	if _, err := block.EraseOperation(index); err != nil {
		return -1, err
	}
	op.DropAllReferences()
	return index, nil
}

// checkNewOps rejects replacement operations that cannot be inserted in
// place of op.
func checkNewOps(op *ir.Operation, newOps []*ir.Operation) error {
	seen := make(map[*ir.Operation]bool, len(newOps))
	for i, n := range newOps {
		switch {
		case n == nil:
			return fmt.Errorf("replace %s: new op %d is nil: %w", op.Name(), i, ErrInvalidReplacement)
		case n == op:
			return fmt.Errorf("replace %s: new op %d is the replaced op: %w", op.Name(), i, ErrInvalidReplacement)
		case seen[n]:
			return fmt.Errorf("replace %s: new op %d (%s) is repeated: %w", op.Name(), i, n.Name(), ErrInvalidReplacement)
		case n.Parent() != nil:
			return fmt.Errorf("replace %s: new op %d (%s): %w", op.Name(), i, n.Name(), ir.ErrAlreadyAttached)
		case n.IsAncestorOf(op):
			return fmt.Errorf("replace %s: new op %d (%s) contains it: %w", op.Name(), i, n.Name(), ir.ErrAlreadyAttached)
		}
		seen[n] = true
	}
	return nil
}

// checkUnused fails if a result of op that will not be replaced still has
// a use outside op. newResults may be nil, meaning no result is replaced.
// A replacement defined inside op does not count, since it is discarded
// together with op.
func checkUnused(op *ir.Operation, newResults []*ir.Value) error {
	for i, res := range op.Results() {
		if newResults != nil {
			if repl := newResults[i]; repl != nil && !definedWithin(op, repl) {
				continue
			}
		}
		if n := outsideUses(op, res); n > 0 {
			return &DanglingUseError{Op: op, Result: i, Uses: n}
		}
	}
	return nil
}

func outsideUses(op *ir.Operation, v *ir.Value) int {
	n := 0
	for _, u := range v.Uses() {
		if !op.IsAncestorOf(u.Op) {
			n++
		}
	}
	return n
}

func definedWithin(op *ir.Operation, v *ir.Value) bool {
	if def := v.DefiningOp(); def != nil {
		return op.IsAncestorOf(def)
	}
	if owner := v.OwnerBlock(); owner != nil {
		if parent := owner.ParentOp(); parent != nil {
			return op.IsAncestorOf(parent)
		}
	}
	return false
}
