package irdl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/irkit/internal/ir"
)

// OperandDef declares one operand slot of an operation kind.
type OperandDef struct {
	Name       string
	Variadic   bool
	Constraint Constraint
}

// ResultDef declares one result slot of an operation kind.
type ResultDef struct {
	Name       string
	Variadic   bool
	Constraint Constraint
}

// AttrDef declares a named attribute slot.
type AttrDef struct {
	Name       string
	Constraint Constraint
	Optional   bool
}

// VerifyFunc is a kind-specific semantic check. Returning a non-nil error
// marks the operation invalid; the error text becomes the diagnostic.
type VerifyFunc func(op *ir.Operation) error

// OpDef is the schema of one operation kind: slot layout, constraints and
// hooks. An OpDef is immutable once created.
type OpDef struct {
	name       string
	summary    string
	operands   []OperandDef
	results    []ResultDef
	attributes []AttrDef
	regions    int
	traits     []Trait
	verifier   VerifyFunc
}

// OpOption configures an OpDef under construction.
type OpOption func(*OpDef)

// WithOperands declares the ordered operand slots.
func WithOperands(defs ...OperandDef) OpOption {
	return func(d *OpDef) { d.operands = append(d.operands, defs...) }
}

// WithResults declares the ordered result slots.
func WithResults(defs ...ResultDef) OpOption {
	return func(d *OpDef) { d.results = append(d.results, defs...) }
}

// WithAttributes declares attribute slots.
func WithAttributes(defs ...AttrDef) OpOption {
	return func(d *OpDef) { d.attributes = append(d.attributes, defs...) }
}

// WithRegions declares how many regions the kind owns.
func WithRegions(n int) OpOption {
	return func(d *OpDef) { d.regions = n }
}

// WithTraits attaches reusable verification traits.
func WithTraits(traits ...Trait) OpOption {
	return func(d *OpDef) { d.traits = append(d.traits, traits...) }
}

// WithVerifier sets the kind-specific semantic verifier.
func WithVerifier(fn VerifyFunc) OpOption {
	return func(d *OpDef) { d.verifier = fn }
}

// WithSummary sets a one-line description.
func WithSummary(s string) OpOption {
	return func(d *OpDef) { d.summary = s }
}

// NewOpDef creates the schema for kind name ("dialect.kind").
// Slots without a constraint accept any attribute.
func NewOpDef(name string, opts ...OpOption) *OpDef {
	d := &OpDef{name: name}
	for _, opt := range opts {
		opt(d)
	}
	for i := range d.operands {
		if d.operands[i].Constraint == nil {
			d.operands[i].Constraint = AnyAttr()
		}
	}
	for i := range d.results {
		if d.results[i].Constraint == nil {
			d.results[i].Constraint = AnyAttr()
		}
	}
	for i := range d.attributes {
		if d.attributes[i].Constraint == nil {
			d.attributes[i].Constraint = AnyAttr()
		}
	}
	return d
}

// Name returns the qualified kind name.
func (d *OpDef) Name() string { return d.name }

// Dialect returns the dialect prefix of the kind name.
func (d *OpDef) Dialect() string {
	dialect, _, _ := strings.Cut(d.name, ".")
	return dialect
}

// Summary returns the one-line description.
func (d *OpDef) Summary() string { return d.summary }

// Operands returns a copy of the operand schema.
func (d *OpDef) Operands() []OperandDef { return slices.Clone(d.operands) }

// Results returns a copy of the result schema.
func (d *OpDef) Results() []ResultDef { return slices.Clone(d.results) }

// Attributes returns a copy of the attribute schema.
func (d *OpDef) Attributes() []AttrDef { return slices.Clone(d.attributes) }

// NumRegions returns the declared region count.
func (d *OpDef) NumRegions() int { return d.regions }

// Traits returns a copy of the attached traits.
func (d *OpDef) Traits() []Trait { return slices.Clone(d.traits) }

// HasVerifier reports whether a kind-specific verifier is attached.
func (d *OpDef) HasVerifier() bool { return d.verifier != nil }

func (d *OpDef) operandSlot(name string) int {
	for i, od := range d.operands {
		if od.Name == name {
			return i
		}
	}
	panic(fmt.Sprintf("irdl: %s has no operand slot %q", d.name, name))
}

func (d *OpDef) resultSlot(name string) int {
	for i, rd := range d.results {
		if rd.Name == name {
			return i
		}
	}
	panic(fmt.Sprintf("irdl: %s has no result slot %q", d.name, name))
}

// Operand returns the value of the single operand slot called name.
func (d *OpDef) Operand(op *ir.Operation, name string) *ir.Value {
	vals := op.OperandSegment(d.operandSlot(name))
	if len(vals) != 1 {
		panic(fmt.Sprintf("irdl: %s operand %q holds %d values", d.name, name, len(vals)))
	}
	return vals[0]
}

// OperandGroup returns the values bound to the operand slot called name.
func (d *OpDef) OperandGroup(op *ir.Operation, name string) []*ir.Value {
	return op.OperandSegment(d.operandSlot(name))
}

// Result returns the value of the single result slot called name.
func (d *OpDef) Result(op *ir.Operation, name string) *ir.Value {
	vals := op.ResultSegment(d.resultSlot(name))
	if len(vals) != 1 {
		panic(fmt.Sprintf("irdl: %s result %q holds %d values", d.name, name, len(vals)))
	}
	return vals[0]
}

// ResultGroup returns the results of the result slot called name.
func (d *OpDef) ResultGroup(op *ir.Operation, name string) []*ir.Value {
	return op.ResultSegment(d.resultSlot(name))
}
