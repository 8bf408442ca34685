package irdl

import (
	"github.com/roach88/irkit/internal/ir"
)

// OperandArg supplies the values for one operand slot.
type OperandArg struct {
	producers []ir.ValueProducer
}

// Single supplies one value (or single-result operation) for a slot.
func Single(p ir.ValueProducer) OperandArg {
	return OperandArg{producers: []ir.ValueProducer{p}}
}

// Variadic supplies a contiguous run of values for a variadic slot.
func Variadic(ps ...ir.ValueProducer) OperandArg {
	return OperandArg{producers: ps}
}

// Values is Variadic for an existing value slice.
func Values(vs []*ir.Value) OperandArg {
	ps := make([]ir.ValueProducer, len(vs))
	for i, v := range vs {
		ps[i] = v
	}
	return OperandArg{producers: ps}
}

// Len returns the number of values supplied.
func (a OperandArg) Len() int { return len(a.producers) }

// ResultArg supplies the types for one result slot.
type ResultArg struct {
	types []ir.Attribute
}

// Type supplies one result type.
func Type(t ir.Attribute) ResultArg {
	return ResultArg{types: []ir.Attribute{t}}
}

// Types supplies a run of result types for a variadic result slot.
func Types(ts ...ir.Attribute) ResultArg {
	return ResultArg{types: ts}
}

// Build creates a detached operation of this kind.
//
// operands and results hold one entry per declared slot, in slot order.
// A single slot takes exactly one value; a variadic slot takes any number.
// Build checks only this shape and returns *SchemaArityError on mismatch.
// It never runs the semantic verifier, so the result may still be invalid.
func (d *OpDef) Build(operands []OperandArg, results []ResultArg, attrs map[string]ir.Attribute) (*ir.Operation, error) {
	if len(operands) != len(d.operands) {
		return nil, &SchemaArityError{Kind: d.name, Slot: "operands", Expected: len(d.operands), Got: len(operands)}
	}
	if len(results) != len(d.results) {
		return nil, &SchemaArityError{Kind: d.name, Slot: "results", Expected: len(d.results), Got: len(results)}
	}

	var flatOperands []*ir.Value
	operandSegments := make([]int, len(d.operands))
	for i, def := range d.operands {
		arg := operands[i]
		if !def.Variadic && arg.Len() != 1 {
			return nil, &SchemaArityError{Kind: d.name, Slot: "operand " + def.Name, Expected: 1, Got: arg.Len()}
		}
		vals, err := ir.ValuesOf(arg.producers...)
		if err != nil {
			return nil, &SchemaArityError{Kind: d.name, Slot: "operand " + def.Name, Expected: arg.Len(), Got: -1, cause: err}
		}
		flatOperands = append(flatOperands, vals...)
		operandSegments[i] = len(vals)
	}

	var flatResults []ir.Attribute
	resultSegments := make([]int, len(d.results))
	for i, def := range d.results {
		arg := results[i]
		if !def.Variadic && len(arg.types) != 1 {
			return nil, &SchemaArityError{Kind: d.name, Slot: "result " + def.Name, Expected: 1, Got: len(arg.types)}
		}
		flatResults = append(flatResults, arg.types...)
		resultSegments[i] = len(arg.types)
	}

	return ir.NewOperation(ir.OperationState{
		Name:            d.name,
		Operands:        flatOperands,
		OperandSegments: operandSegments,
		ResultTypes:     flatResults,
		ResultSegments:  resultSegments,
		Attributes:      attrs,
		NumRegions:      d.regions,
	})
}
