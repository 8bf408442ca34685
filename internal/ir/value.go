package ir

import (
	"fmt"
	"slices"
)

// Use is a single reference to a value: operand Index of operation Op.
// Index is the flat operand index, across all operand segments.
type Use struct {
	Op    *Operation
	Index int
}

// Value is a typed SSA value. It is defined exactly once, either as a
// result of an operation (OpResult) or as an argument of a block
// (BlockArgument).
//
// A value tracks every operand slot that currently references it. The use
// set is kept in sync by SetOperand and ReplaceAllUsesWith; it is never
// rebuilt lazily.
type Value struct {
	typ Attribute

	// Exactly one of op or block is set.
	op    *Operation
	block *Block
	index int

	// uses maps each use to the order it was recorded in, so iteration is
	// deterministic.
	uses   map[Use]uint64
	useSeq uint64
}

// defineResult creates result slot index of op with an empty use set.
func defineResult(op *Operation, index int, typ Attribute) *Value {
	return &Value{typ: typ, op: op, index: index}
}

// defineArgument creates argument slot index of b with an empty use set.
func defineArgument(b *Block, index int, typ Attribute) *Value {
	return &Value{typ: typ, block: b, index: index}
}

// Type returns the value's type.
func (v *Value) Type() Attribute {
	return v.typ
}

// DefiningOp returns the operation producing this value, or nil for a
// block argument.
func (v *Value) DefiningOp() *Operation {
	return v.op
}

// OwnerBlock returns the block declaring this value, or nil for an
// operation result.
func (v *Value) OwnerBlock() *Block {
	return v.block
}

// IsBlockArgument reports whether v is a block argument.
func (v *Value) IsBlockArgument() bool {
	return v.block != nil
}

// Index returns the result or argument slot index of v in its owner.
func (v *Value) Index() int {
	return v.index
}

// HasUses reports whether any operand slot references v.
func (v *Value) HasUses() bool {
	return len(v.uses) > 0
}

// NumUses returns the size of the use set.
func (v *Value) NumUses() int {
	return len(v.uses)
}

// Uses returns the use set in the order uses were recorded.
func (v *Value) Uses() []Use {
	uses := make([]Use, 0, len(v.uses))
	for u := range v.uses {
		uses = append(uses, u)
	}
	slices.SortFunc(uses, func(a, b Use) int {
		sa, sb := v.uses[a], v.uses[b]
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		default:
			return 0
		}
	})
	return uses
}

// Users returns the distinct operations using v, in use order.
func (v *Value) Users() []*Operation {
	var users []*Operation
	seen := make(map[*Operation]bool)
	for _, u := range v.Uses() {
		if !seen[u.Op] {
			seen[u.Op] = true
			users = append(users, u.Op)
		}
	}
	return users
}

// recordUse adds u to the use set.
func (v *Value) recordUse(u Use) {
	if v.uses == nil {
		v.uses = make(map[Use]uint64)
	}
	if _, ok := v.uses[u]; ok {
		return
	}
	v.useSeq++
	v.uses[u] = v.useSeq
}

// removeUse removes u from the use set.
func (v *Value) removeUse(u Use) {
	delete(v.uses, u)
}

// ReplaceAllUsesWith rebinds every operand slot referencing v to repl and
// moves the uses into repl's use set. Afterwards v has no uses.
//
// No type checking is performed.
func (v *Value) ReplaceAllUsesWith(repl *Value) {
	if repl == nil {
		panic("ir: ReplaceAllUsesWith called with nil replacement")
	}
	if repl == v {
		return
	}
	for _, u := range v.Uses() {
		u.Op.operands[u.Index] = repl
		repl.recordUse(u)
	}
	v.uses = nil
}

func (v *Value) String() string {
	if v.block != nil {
		return fmt.Sprintf("arg%d: %s", v.index, typeString(v.typ))
	}
	return fmt.Sprintf("%s#%d: %s", v.op.name, v.index, typeString(v.typ))
}

// typeString renders t, or "?" for a value created without a type.
func typeString(t Attribute) string {
	if t == nil {
		return "?"
	}
	return t.String()
}

// ValueProducer is anything that can stand for a single SSA value: a *Value,
// or an operation with exactly one result.
type ValueProducer interface {
	producedValue() (*Value, error)
}

func (v *Value) producedValue() (*Value, error) {
	if v == nil {
		return nil, ErrNilOperand
	}
	return v, nil
}

// ValueOf resolves a value producer to its value.
func ValueOf(p ValueProducer) (*Value, error) {
	if p == nil {
		return nil, ErrNilOperand
	}
	return p.producedValue()
}

// ValuesOf resolves each producer in order.
func ValuesOf(ps ...ValueProducer) ([]*Value, error) {
	vals := make([]*Value, len(ps))
	for i, p := range ps {
		v, err := ValueOf(p)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		vals[i] = v
	}
	return vals, nil
}
