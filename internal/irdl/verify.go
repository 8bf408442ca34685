package irdl

import (
	"fmt"

	"github.com/roach88/irkit/internal/ir"
)

// Verify checks op against this kind's schema and semantic rules. It
// returns nil or a *VerifyError.
//
// Generic checks run first (slot layout, slot constraints, attributes,
// region count), then traits, then the kind verifier. The kind verifier
// can therefore rely on the slot layout being well formed.
func (d *OpDef) Verify(op *ir.Operation) error {
	if op.Name() != d.name {
		return d.fail(op, nil, "operation kind %s does not match schema %s", op.Name(), d.name)
	}
	if err := d.verifySlots(op); err != nil {
		return err
	}
	if err := d.verifyAttributes(op); err != nil {
		return err
	}
	if op.NumRegions() != d.regions {
		return d.fail(op, nil, "expected %d regions, got %d", d.regions, op.NumRegions())
	}
	for _, tr := range d.traits {
		if err := tr.Verify(op); err != nil {
			return d.fail(op, err, "%s: %v", tr.Name(), err)
		}
	}
	if d.verifier != nil {
		if err := d.verifier(op); err != nil {
			return ToVerifyError(op, err)
		}
	}
	return nil
}

func (d *OpDef) verifySlots(op *ir.Operation) error {
	if op.NumOperandSegments() != len(d.operands) {
		return d.fail(op, nil, "expected %d operand slots, got %d", len(d.operands), op.NumOperandSegments())
	}
	for i, def := range d.operands {
		vals := op.OperandSegment(i)
		if !def.Variadic && len(vals) != 1 {
			return d.fail(op, nil, "operand %q expects exactly one value, got %d", def.Name, len(vals))
		}
		for j, v := range vals {
			if err := def.Constraint.Verify(v.Type()); err != nil {
				return d.fail(op, err, "operand %q #%d: %v", def.Name, j, err)
			}
		}
	}

	if op.NumResultSegments() != len(d.results) {
		return d.fail(op, nil, "expected %d result slots, got %d", len(d.results), op.NumResultSegments())
	}
	for i, def := range d.results {
		vals := op.ResultSegment(i)
		if !def.Variadic && len(vals) != 1 {
			return d.fail(op, nil, "result %q expects exactly one value, got %d", def.Name, len(vals))
		}
		for j, v := range vals {
			if err := def.Constraint.Verify(v.Type()); err != nil {
				return d.fail(op, err, "result %q #%d: %v", def.Name, j, err)
			}
		}
	}
	return nil
}

func (d *OpDef) verifyAttributes(op *ir.Operation) error {
	for _, def := range d.attributes {
		a, ok := op.Attr(def.Name)
		if !ok {
			if def.Optional {
				continue
			}
			return d.fail(op, nil, "missing required attribute %q", def.Name)
		}
		if err := def.Constraint.Verify(a); err != nil {
			return d.fail(op, err, "attribute %q: %v", def.Name, err)
		}
	}
	return nil
}

func (d *OpDef) fail(op *ir.Operation, cause error, format string, args ...any) error {
	return &VerifyError{Op: op, Message: fmt.Sprintf(format, args...), cause: cause}
}
