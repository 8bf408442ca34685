package ir

import (
	"fmt"
	"slices"
	"strings"
)

// OperationState holds everything needed to create an operation.
//
// OperandSegments and ResultSegments give the number of values bound to
// each declared slot, in slot order. A nil segment list means one value per
// slot. Kind builders in irdl fill these in from the kind's schema.
type OperationState struct {
	Name            string
	Operands        []*Value
	OperandSegments []int
	ResultTypes     []Attribute
	ResultSegments  []int
	Attributes      map[string]Attribute
	NumRegions      int
}

// Operation is an instance of a registered operation kind.
//
// An operation owns its results and regions. It is detached (Parent() ==
// nil) when created and becomes attached when inserted into a block.
type Operation struct {
	name string

	operands        []*Value
	operandSegments []int

	results        []*Value
	resultSegments []int

	attrs   map[string]Attribute
	regions []*Region

	parent *Block
	index  int
}

// NewOperation creates a detached operation from st, defining its results
// and recording a use for every operand.
func NewOperation(st OperationState) (*Operation, error) {
	if st.Name == "" {
		return nil, fmt.Errorf("%w: empty operation name", ErrMalformedOperation)
	}
	for i, v := range st.Operands {
		if v == nil {
			return nil, fmt.Errorf("%s: operand %d: %w", st.Name, i, ErrNilOperand)
		}
	}
	for i, t := range st.ResultTypes {
		if t == nil {
			return nil, fmt.Errorf("%w: %s: result %d has no type", ErrMalformedOperation, st.Name, i)
		}
	}

	operandSegments, err := normalizeSegments(st.OperandSegments, len(st.Operands))
	if err != nil {
		return nil, fmt.Errorf("%s operands: %w", st.Name, err)
	}
	resultSegments, err := normalizeSegments(st.ResultSegments, len(st.ResultTypes))
	if err != nil {
		return nil, fmt.Errorf("%s results: %w", st.Name, err)
	}

	op := &Operation{
		name:            st.Name,
		operands:        slices.Clone(st.Operands),
		operandSegments: operandSegments,
		resultSegments:  resultSegments,
		attrs:           make(map[string]Attribute, len(st.Attributes)),
		index:           -1,
	}
	for k, v := range st.Attributes {
		op.attrs[k] = v
	}

	op.results = make([]*Value, len(st.ResultTypes))
	for i, t := range st.ResultTypes {
		op.results[i] = defineResult(op, i, t)
	}

	for i, v := range op.operands {
		v.recordUse(Use{Op: op, Index: i})
	}

	op.regions = make([]*Region, st.NumRegions)
	for i := range op.regions {
		op.regions[i] = &Region{parent: op}
	}

	return op, nil
}

// normalizeSegments checks that segs sums to total; nil means one per value.
func normalizeSegments(segs []int, total int) ([]int, error) {
	if segs == nil {
		out := make([]int, total)
		for i := range out {
			out[i] = 1
		}
		return out, nil
	}
	sum := 0
	for i, n := range segs {
		if n < 0 {
			return nil, fmt.Errorf("%w: segment %d has negative size %d", ErrSegmentMismatch, i, n)
		}
		sum += n
	}
	if sum != total {
		return nil, fmt.Errorf("%w: segments cover %d values, have %d", ErrSegmentMismatch, sum, total)
	}
	return slices.Clone(segs), nil
}

// Name returns the qualified kind name, e.g. "vector.load".
func (op *Operation) Name() string {
	return op.name
}

// Dialect returns the dialect prefix of the kind name.
func (op *Operation) Dialect() string {
	if i := strings.IndexByte(op.name, '.'); i >= 0 {
		return op.name[:i]
	}
	return ""
}

// producedValue lets a single-result operation stand in for its result.
func (op *Operation) producedValue() (*Value, error) {
	if op == nil {
		return nil, ErrNilOperand
	}
	if len(op.results) != 1 {
		return nil, fmt.Errorf("%w: %s has %d results, want exactly 1", ErrNotSingleResult, op.name, len(op.results))
	}
	return op.results[0], nil
}

// NumOperands returns the number of operand values across all slots.
func (op *Operation) NumOperands() int {
	return len(op.operands)
}

// Operand returns the value bound to flat operand index i.
func (op *Operation) Operand(i int) *Value {
	return op.operands[i]
}

// Operands returns a copy of the flat operand list.
func (op *Operation) Operands() []*Value {
	return slices.Clone(op.operands)
}

// SetOperand rebinds flat operand index i to v, keeping both use sets in sync.
func (op *Operation) SetOperand(i int, v *Value) {
	if v == nil {
		panic("ir: SetOperand called with nil value")
	}
	u := Use{Op: op, Index: i}
	old := op.operands[i]
	if old == v {
		return
	}
	if old != nil {
		old.removeUse(u)
	}
	op.operands[i] = v
	v.recordUse(u)
}

// NumOperandSegments returns the number of declared operand slots.
func (op *Operation) NumOperandSegments() int {
	return len(op.operandSegments)
}

// OperandSegmentSizes returns a copy of the per-slot operand counts.
func (op *Operation) OperandSegmentSizes() []int {
	return slices.Clone(op.operandSegments)
}

// OperandSegment returns the values bound to operand slot s.
func (op *Operation) OperandSegment(s int) []*Value {
	start, end := segmentRange(op.operandSegments, s)
	return slices.Clone(op.operands[start:end])
}

// OperandSegmentStart returns the flat index of the first value of slot s.
func (op *Operation) OperandSegmentStart(s int) int {
	start, _ := segmentRange(op.operandSegments, s)
	return start
}

// NumResults returns the number of results.
func (op *Operation) NumResults() int {
	return len(op.results)
}

// Result returns result i.
func (op *Operation) Result(i int) *Value {
	return op.results[i]
}

// Results returns a copy of the result list.
func (op *Operation) Results() []*Value {
	return slices.Clone(op.results)
}

// NumResultSegments returns the number of declared result slots.
func (op *Operation) NumResultSegments() int {
	return len(op.resultSegments)
}

// ResultSegmentSizes returns a copy of the per-slot result counts.
func (op *Operation) ResultSegmentSizes() []int {
	return slices.Clone(op.resultSegments)
}

// ResultSegment returns the results of result slot s.
func (op *Operation) ResultSegment(s int) []*Value {
	start, end := segmentRange(op.resultSegments, s)
	return slices.Clone(op.results[start:end])
}

// HasUses reports whether any result is referenced.
func (op *Operation) HasUses() bool {
	for _, r := range op.results {
		if r.HasUses() {
			return true
		}
	}
	return false
}

func segmentRange(segs []int, s int) (int, int) {
	if s < 0 || s >= len(segs) {
		panic(fmt.Sprintf("ir: segment %d out of range [0, %d)", s, len(segs)))
	}
	start := 0
	for i := 0; i < s; i++ {
		start += segs[i]
	}
	return start, start + segs[s]
}

// Attr returns the named attribute.
func (op *Operation) Attr(name string) (Attribute, bool) {
	a, ok := op.attrs[name]
	return a, ok
}

// SetAttr sets or replaces the named attribute.
func (op *Operation) SetAttr(name string, a Attribute) {
	op.attrs[name] = a
}

// RemoveAttr deletes the named attribute.
func (op *Operation) RemoveAttr(name string) {
	delete(op.attrs, name)
}

// Attributes returns the attributes as a DictAttr copy.
func (op *Operation) Attributes() DictAttr {
	d := make(DictAttr, len(op.attrs))
	for k, v := range op.attrs {
		d[k] = v
	}
	return d
}

// NumRegions returns the number of owned regions.
func (op *Operation) NumRegions() int {
	return len(op.regions)
}

// Region returns region i.
func (op *Operation) Region(i int) *Region {
	return op.regions[i]
}

// Regions returns a copy of the owned regions.
func (op *Operation) Regions() []*Region {
	return slices.Clone(op.regions)
}

// Parent returns the block containing op, or nil when detached.
func (op *Operation) Parent() *Block {
	return op.parent
}

// ParentOp returns the operation owning the region of op's block, if any.
func (op *Operation) ParentOp() *Operation {
	if op.parent == nil || op.parent.parent == nil {
		return nil
	}
	return op.parent.parent.parent
}

// IsAncestorOf reports whether other is op or is nested inside op.
func (op *Operation) IsAncestorOf(other *Operation) bool {
	for cur := other; cur != nil; cur = cur.ParentOp() {
		if cur == op {
			return true
		}
	}
	return false
}

// DropAllReferences removes every operand use held by op and by operations
// nested in its regions. Operand slots keep pointing at their old values;
// the operation must not be used afterwards except to be discarded.
func (op *Operation) DropAllReferences() {
	op.Walk(func(o *Operation) {
		for i, v := range o.operands {
			v.removeUse(Use{Op: o, Index: i})
		}
	})
}

// Walk calls fn for op and every nested operation, in pre-order.
func (op *Operation) Walk(fn func(*Operation)) {
	fn(op)
	for _, r := range op.regions {
		for _, b := range r.blocks {
			for _, nested := range b.ops {
				nested.Walk(fn)
			}
		}
	}
}

// String renders op in a generic debug form:
//
//	vector.load(memref<4xf32>, index) {attr = 1} -> vector<f32>
func (op *Operation) String() string {
	var sb strings.Builder
	sb.WriteString(op.name)
	sb.WriteByte('(')
	for i, v := range op.operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(typeString(v.typ))
	}
	sb.WriteByte(')')
	if len(op.attrs) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(op.Attributes().String())
	}
	if len(op.results) > 0 {
		sb.WriteString(" -> ")
		for i, r := range op.results {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(typeString(r.typ))
		}
	}
	return sb.String()
}
