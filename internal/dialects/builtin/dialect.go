package builtin

import (
	"errors"

	"github.com/roach88/irkit/internal/ir"
	"github.com/roach88/irkit/internal/irdl"
)

// ErrInvalidType is returned by ParseType for unrecognized type text.
var ErrInvalidType = errors.New("invalid type")

// Type kind constraints. Slot declarations use these to accept any type of
// a kind regardless of its parameters.
var (
	AnyIndex   = irdl.Base[IndexType]("index")
	AnyInteger = irdl.Base[IntegerType]("integer")
	AnyFloat   = irdl.Base[FloatType]("float")
	AnyVector  = irdl.Base[VectorType]("vector")
	AnyMemRef  = irdl.Base[MemRefType]("memref")
)

// ModuleDef is the top-level container kind: one region, no operands or
// results.
var ModuleDef = irdl.NewOpDef("builtin.module",
	irdl.WithRegions(1),
	irdl.WithSummary("top-level container of operations"),
	irdl.WithVerifier(func(op *ir.Operation) error {
		if op.Region(0).Len() != 1 {
			return errors.New("expected a single block in the body region")
		}
		return nil
	}),
)

// NewModule returns a detached module whose body region holds one empty
// block with the given argument types.
func NewModule(argTypes ...ir.Attribute) *ir.Operation {
	op, err := ModuleDef.Build(nil, nil, nil)
	if err != nil {
		panic(err)
	}
	if err := op.Region(0).AddBlock(ir.NewBlock(argTypes...)); err != nil {
		panic(err)
	}
	return op
}

// ModuleBody returns the single block of a module built by NewModule.
func ModuleBody(module *ir.Operation) *ir.Block {
	return module.Region(0).Block(0)
}

// Dialect returns the builtin dialect for registration.
func Dialect() irdl.Dialect {
	return irdl.Dialect{
		Name: "builtin",
		Ops:  []*irdl.OpDef{ModuleDef},
		Types: []irdl.TypeDef{
			{Name: "builtin.index", Summary: "target-sized index", Constraint: AnyIndex},
			{Name: "builtin.integer", Summary: "signless integer", Constraint: AnyInteger},
			{Name: "builtin.float", Summary: "IEEE float", Constraint: AnyFloat},
			{Name: "builtin.vector", Summary: "fixed-shape vector of scalars", Constraint: AnyVector},
			{Name: "builtin.memref", Summary: "shaped memory reference", Constraint: AnyMemRef},
		},
	}
}
