package vector

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/irkit/internal/dialects/builtin"
	"github.com/roach88/irkit/internal/ir"
	"github.com/roach88/irkit/internal/irdl"
)

// Operation kinds of the vector dialect. They are assigned in init since
// their verifiers read slots through them.
var (
	LoadDef        *irdl.OpDef
	StoreDef       *irdl.OpDef
	BroadcastDef   *irdl.OpDef
	FMADef         *irdl.OpDef
	MaskedLoadDef  *irdl.OpDef
	MaskedStoreDef *irdl.OpDef
	PrintDef       *irdl.OpDef
	CreateMaskDef  *irdl.OpDef
)

func init() {
	LoadDef = irdl.NewOpDef("vector.load",
		irdl.WithSummary("load a vector from memory"),
		irdl.WithOperands(
			irdl.OperandDef{Name: "memref", Constraint: builtin.AnyMemRef},
			irdl.OperandDef{Name: "indices", Variadic: true, Constraint: builtin.AnyIndex},
		),
		irdl.WithResults(irdl.ResultDef{Name: "res", Constraint: builtin.AnyVector}),
		irdl.WithVerifier(verifyLoad),
	)

	StoreDef = irdl.NewOpDef("vector.store",
		irdl.WithSummary("store a vector to memory"),
		irdl.WithOperands(
			irdl.OperandDef{Name: "vector", Constraint: builtin.AnyVector},
			irdl.OperandDef{Name: "memref", Constraint: builtin.AnyMemRef},
			irdl.OperandDef{Name: "indices", Variadic: true, Constraint: builtin.AnyIndex},
		),
		irdl.WithVerifier(verifyStore),
	)

	BroadcastDef = irdl.NewOpDef("vector.broadcast",
		irdl.WithSummary("splat a scalar across a vector"),
		irdl.WithOperands(irdl.OperandDef{Name: "source"}),
		irdl.WithResults(irdl.ResultDef{Name: "vector", Constraint: builtin.AnyVector}),
		irdl.WithVerifier(verifyBroadcast),
	)

	FMADef = irdl.NewOpDef("vector.fma",
		irdl.WithSummary("fused multiply-add"),
		irdl.WithOperands(
			irdl.OperandDef{Name: "lhs", Constraint: builtin.AnyVector},
			irdl.OperandDef{Name: "rhs", Constraint: builtin.AnyVector},
			irdl.OperandDef{Name: "acc", Constraint: builtin.AnyVector},
		),
		irdl.WithResults(irdl.ResultDef{Name: "res", Constraint: builtin.AnyVector}),
		irdl.WithVerifier(verifyFMA),
	)

	MaskedLoadDef = irdl.NewOpDef("vector.maskedload",
		irdl.WithSummary("load lanes selected by a mask, others from passthrough"),
		irdl.WithOperands(
			irdl.OperandDef{Name: "memref", Constraint: builtin.AnyMemRef},
			irdl.OperandDef{Name: "indices", Variadic: true, Constraint: builtin.AnyIndex},
			irdl.OperandDef{Name: "mask", Constraint: builtin.AnyVector},
			irdl.OperandDef{Name: "passthrough", Constraint: builtin.AnyVector},
		),
		irdl.WithResults(irdl.ResultDef{Name: "res", Constraint: builtin.AnyVector}),
		irdl.WithVerifier(verifyMaskedLoad),
	)

	MaskedStoreDef = irdl.NewOpDef("vector.maskedstore",
		irdl.WithSummary("store lanes selected by a mask"),
		irdl.WithOperands(
			irdl.OperandDef{Name: "memref", Constraint: builtin.AnyMemRef},
			irdl.OperandDef{Name: "indices", Variadic: true, Constraint: builtin.AnyIndex},
			irdl.OperandDef{Name: "mask", Constraint: builtin.AnyVector},
			irdl.OperandDef{Name: "value_to_store", Constraint: builtin.AnyVector},
		),
		irdl.WithVerifier(verifyMaskedStore),
	)

	PrintDef = irdl.NewOpDef("vector.print",
		irdl.WithSummary("print a value"),
		irdl.WithOperands(irdl.OperandDef{Name: "source"}),
	)

	CreateMaskDef = irdl.NewOpDef("vector.create_mask",
		irdl.WithSummary("build a mask from per-dimension bounds"),
		irdl.WithOperands(irdl.OperandDef{Name: "mask_operands", Variadic: true, Constraint: builtin.AnyIndex}),
		irdl.WithResults(irdl.ResultDef{Name: "mask_vector", Constraint: builtin.AnyVector}),
		irdl.WithVerifier(verifyCreateMask),
	)
}

// Dialect returns the vector dialect for registration.
func Dialect() irdl.Dialect {
	return irdl.Dialect{
		Name: "vector",
		Ops: []*irdl.OpDef{
			LoadDef, StoreDef, BroadcastDef, FMADef,
			MaskedLoadDef, MaskedStoreDef, PrintDef, CreateMaskDef,
		},
	}
}

// ErrOperandType is returned by builders when an operand's type does not
// allow the result type to be inferred.
var ErrOperandType = errors.New("unexpected operand type")

// Load builds vector.load reading a vector<1xT> from a memref of T.
func Load(ref ir.ValueProducer, indices ...ir.ValueProducer) (*ir.Operation, error) {
	mt, err := memrefOf(LoadDef, ref)
	if err != nil {
		return nil, err
	}
	return LoadDef.Build(
		[]irdl.OperandArg{irdl.Single(ref), irdl.Variadic(indices...)},
		[]irdl.ResultArg{irdl.Type(builtin.Vector(mt.Elem, 1))},
		nil)
}

// Store builds vector.store writing vec into ref at indices.
func Store(vec, ref ir.ValueProducer, indices ...ir.ValueProducer) (*ir.Operation, error) {
	return StoreDef.Build(
		[]irdl.OperandArg{irdl.Single(vec), irdl.Single(ref), irdl.Variadic(indices...)},
		nil, nil)
}

// Broadcast builds vector.broadcast producing a vector<1xT> from a scalar T.
func Broadcast(source ir.ValueProducer) (*ir.Operation, error) {
	v, err := ir.ValueOf(source)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", BroadcastDef.Name(), err)
	}
	return BroadcastDef.Build(
		[]irdl.OperandArg{irdl.Single(v)},
		[]irdl.ResultArg{irdl.Type(builtin.Vector(v.Type(), 1))},
		nil)
}

// FMA builds vector.fma; the result has the type of lhs.
func FMA(lhs, rhs, acc ir.ValueProducer) (*ir.Operation, error) {
	v, err := ir.ValueOf(lhs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", FMADef.Name(), err)
	}
	if _, ok := v.Type().(builtin.VectorType); !ok {
		return nil, fmt.Errorf("%s: %w: lhs has type %s, want a vector", FMADef.Name(), ErrOperandType, v.Type())
	}
	return FMADef.Build(
		[]irdl.OperandArg{irdl.Single(v), irdl.Single(rhs), irdl.Single(acc)},
		[]irdl.ResultArg{irdl.Type(v.Type())},
		nil)
}

// MaskedLoad builds vector.maskedload producing a vector<1xT> from a memref
// of T.
func MaskedLoad(ref ir.ValueProducer, indices []ir.ValueProducer, mask, passthrough ir.ValueProducer) (*ir.Operation, error) {
	mt, err := memrefOf(MaskedLoadDef, ref)
	if err != nil {
		return nil, err
	}
	return MaskedLoadDef.Build(
		[]irdl.OperandArg{irdl.Single(ref), irdl.Variadic(indices...), irdl.Single(mask), irdl.Single(passthrough)},
		[]irdl.ResultArg{irdl.Type(builtin.Vector(mt.Elem, 1))},
		nil)
}

// MaskedStore builds vector.maskedstore.
func MaskedStore(ref ir.ValueProducer, indices []ir.ValueProducer, mask, value ir.ValueProducer) (*ir.Operation, error) {
	return MaskedStoreDef.Build(
		[]irdl.OperandArg{irdl.Single(ref), irdl.Variadic(indices...), irdl.Single(mask), irdl.Single(value)},
		nil, nil)
}

// Print builds vector.print.
func Print(source ir.ValueProducer) (*ir.Operation, error) {
	return PrintDef.Build([]irdl.OperandArg{irdl.Single(source)}, nil, nil)
}

// CreateMask builds vector.create_mask producing a vector of i1 with the
// given shape, one bound operand per dimension.
func CreateMask(shape []int64, bounds ...ir.ValueProducer) (*ir.Operation, error) {
	return CreateMaskDef.Build(
		[]irdl.OperandArg{irdl.Variadic(bounds...)},
		[]irdl.ResultArg{irdl.Type(builtin.Vector(builtin.I1, slices.Clone(shape)...))},
		nil)
}

func memrefOf(def *irdl.OpDef, p ir.ValueProducer) (builtin.MemRefType, error) {
	v, err := ir.ValueOf(p)
	if err != nil {
		return builtin.MemRefType{}, fmt.Errorf("%s: memref: %w", def.Name(), err)
	}
	mt, ok := v.Type().(builtin.MemRefType)
	if !ok {
		return builtin.MemRefType{}, fmt.Errorf("%s: %w: memref has type %s", def.Name(), ErrOperandType, v.Type())
	}
	return mt, nil
}
