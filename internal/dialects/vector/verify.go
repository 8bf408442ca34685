package vector

import (
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/irkit/internal/dialects/builtin"
	"github.com/roach88/irkit/internal/ir"
)

// The generic slot checks run before these hooks, so the type assertions on
// declared vector and memref slots cannot fail.

func verifyLoad(op *ir.Operation) error {
	memref := LoadDef.Operand(op, "memref").Type().(builtin.MemRefType)
	res := LoadDef.Result(op, "res").Type().(builtin.VectorType)

	if !ir.AttrEqual(memref.Elem, res.Elem) {
		return errors.New("MemRef element type should match the Vector element type.")
	}
	if memref.Rank() != len(LoadDef.OperandGroup(op, "indices")) {
		return errors.New("Expected an index for each dimension.")
	}
	return nil
}

func verifyStore(op *ir.Operation) error {
	memref := StoreDef.Operand(op, "memref").Type().(builtin.MemRefType)
	vec := StoreDef.Operand(op, "vector").Type().(builtin.VectorType)

	if !ir.AttrEqual(memref.Elem, vec.Elem) {
		return errors.New("MemRef element type should match the Vector element type.")
	}
	if memref.Rank() != len(StoreDef.OperandGroup(op, "indices")) {
		return errors.New("Expected an index for each dimension.")
	}
	return nil
}

func verifyBroadcast(op *ir.Operation) error {
	source := BroadcastDef.Operand(op, "source").Type()
	vec := BroadcastDef.Result(op, "vector").Type().(builtin.VectorType)

	if !ir.AttrEqual(source, vec.Elem) {
		return errors.New("Source operand and result vector must have the same element type.")
	}
	return nil
}

func verifyFMA(op *ir.Operation) error {
	res := FMADef.Result(op, "res").Type().(builtin.VectorType)
	sources := []string{"lhs", "rhs", "acc"}

	for _, name := range sources {
		src := FMADef.Operand(op, name).Type().(builtin.VectorType)
		if !ir.AttrEqual(res.Elem, src.Elem) {
			return fmt.Errorf("Result vector type must match with all source vectors. Found different types for result vector and %s vector.", name)
		}
	}
	for _, name := range sources {
		src := FMADef.Operand(op, name).Type().(builtin.VectorType)
		if !slices.Equal(res.Dims, src.Dims) {
			return fmt.Errorf("Result vector shape must match with all source vector shapes. Found different shapes for result vector and %s vector.", name)
		}
	}
	return nil
}

func verifyMaskedLoad(op *ir.Operation) error {
	memref := MaskedLoadDef.Operand(op, "memref").Type().(builtin.MemRefType)
	res := MaskedLoadDef.Result(op, "res").Type().(builtin.VectorType)
	mask := MaskedLoadDef.Operand(op, "mask").Type().(builtin.VectorType)
	passthrough := MaskedLoadDef.Operand(op, "passthrough").Type().(builtin.VectorType)

	if !ir.AttrEqual(memref.Elem, res.Elem) {
		return errors.New("MemRef element type should match the result vector and passthrough vector element type. Found different element types for memref and result.")
	}
	if !ir.AttrEqual(memref.Elem, passthrough.Elem) {
		return errors.New("MemRef element type should match the result vector and passthrough vector element type. Found different element types for memref and passthrough.")
	}
	if res.Rank() != 1 {
		return errors.New("Expected a rank 1 result vector.")
	}
	return verifyMask(mask, memref, len(MaskedLoadDef.OperandGroup(op, "indices")))
}

func verifyMaskedStore(op *ir.Operation) error {
	memref := MaskedStoreDef.Operand(op, "memref").Type().(builtin.MemRefType)
	mask := MaskedStoreDef.Operand(op, "mask").Type().(builtin.VectorType)
	value := MaskedStoreDef.Operand(op, "value_to_store").Type().(builtin.VectorType)

	if !ir.AttrEqual(memref.Elem, value.Elem) {
		return fmt.Errorf("MemRef element type should match the stored vector type. Obtained types were %s and %s.", memref.Elem, value.Elem)
	}
	if value.Rank() != 1 {
		return errors.New("Expected a rank 1 vector to be stored.")
	}
	return verifyMask(mask, memref, len(MaskedStoreDef.OperandGroup(op, "indices")))
}

// verifyMask holds the mask and index rules shared by the masked ops.
func verifyMask(mask builtin.VectorType, memref builtin.MemRefType, numIndices int) error {
	if mask.Rank() != 1 {
		return errors.New("Expected a rank 1 mask vector.")
	}
	if !ir.AttrEqual(mask.Elem, builtin.I1) {
		return errors.New("Expected mask element type to be i1.")
	}
	if memref.Rank() != numIndices {
		return errors.New("Expected an index for each memref dimension.")
	}
	return nil
}

func verifyCreateMask(op *ir.Operation) error {
	mask := CreateMaskDef.Result(op, "mask_vector").Type().(builtin.VectorType)

	if !ir.AttrEqual(mask.Elem, builtin.I1) {
		return errors.New("Expected mask element type to be i1.")
	}
	if mask.Rank() != len(CreateMaskDef.OperandGroup(op, "mask_operands")) {
		return errors.New("Expected an operand value for each dimension of resultant mask.")
	}
	return nil
}
