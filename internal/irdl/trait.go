package irdl

import (
	"fmt"
	"slices"

	"github.com/roach88/irkit/internal/ir"
)

// ShapedType is implemented by container types that have an element type
// and a static shape, such as vectors and memory references.
type ShapedType interface {
	ir.Attribute
	ElementType() ir.Attribute
	Shape() []int64
}

// ElementTypeOf returns the element type of a shaped type, or t itself.
func ElementTypeOf(t ir.Attribute) ir.Attribute {
	if st, ok := t.(ShapedType); ok {
		return st.ElementType()
	}
	return t
}

// Trait is a reusable verification rule shared by many kinds.
type Trait interface {
	Name() string
	Verify(op *ir.Operation) error
}

// SameOperandsAndResultType requires every operand and result to have the
// same type.
func SameOperandsAndResultType() Trait { return sameOperandsAndResultType{} }

type sameOperandsAndResultType struct{}

func (sameOperandsAndResultType) Name() string { return "SameOperandsAndResultType" }

func (sameOperandsAndResultType) Verify(op *ir.Operation) error {
	types := allTypes(op)
	for i := 1; i < len(types); i++ {
		if !ir.AttrEqual(types[0], types[i]) {
			return fmt.Errorf("expected all types to be %s, found %s", types[0], types[i])
		}
	}
	return nil
}

// SameOperandsElementType requires every operand and result to share an
// element type; non-shaped types count as their own element type.
func SameOperandsElementType() Trait { return sameOperandsElementType{} }

type sameOperandsElementType struct{}

func (sameOperandsElementType) Name() string { return "SameOperandsElementType" }

func (sameOperandsElementType) Verify(op *ir.Operation) error {
	types := allTypes(op)
	for i := 1; i < len(types); i++ {
		want, got := ElementTypeOf(types[0]), ElementTypeOf(types[i])
		if !ir.AttrEqual(want, got) {
			return fmt.Errorf("expected element type %s, found %s", want, got)
		}
	}
	return nil
}

// SameOperandsShape requires every shaped operand and result to share a shape.
func SameOperandsShape() Trait { return sameOperandsShape{} }

type sameOperandsShape struct{}

func (sameOperandsShape) Name() string { return "SameOperandsShape" }

func (sameOperandsShape) Verify(op *ir.Operation) error {
	var want []int64
	found := false
	for _, t := range allTypes(op) {
		st, ok := t.(ShapedType)
		if !ok {
			continue
		}
		if !found {
			want, found = st.Shape(), true
			continue
		}
		if !slices.Equal(want, st.Shape()) {
			return fmt.Errorf("expected shape %v, found %v in %s", want, st.Shape(), st)
		}
	}
	return nil
}

// TraitByName resolves a built-in trait by name.
func TraitByName(name string) (Trait, bool) {
	switch name {
	case "SameOperandsAndResultType":
		return SameOperandsAndResultType(), true
	case "SameOperandsElementType":
		return SameOperandsElementType(), true
	case "SameOperandsShape":
		return SameOperandsShape(), true
	default:
		return nil, false
	}
}

func allTypes(op *ir.Operation) []ir.Attribute {
	types := make([]ir.Attribute, 0, op.NumOperands()+op.NumResults())
	for _, v := range op.Operands() {
		types = append(types, v.Type())
	}
	for _, v := range op.Results() {
		types = append(types, v.Type())
	}
	return types
}
