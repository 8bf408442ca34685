package compiler

import (
	"github.com/roach88/irkit/internal/irdl"
)

// ToDialect validates spec and turns it into a registrable dialect. Op names
// are qualified with the dialect name. Validation failures are returned as
// ValidationErrors.
func ToDialect(spec *DialectSpec, res *Resolver) (irdl.Dialect, error) {
	if errs := ValidateWith(spec, res); len(errs) > 0 {
		return irdl.Dialect{}, ValidationErrors(errs)
	}

	d := irdl.Dialect{Name: spec.Name}
	for _, op := range spec.Ops {
		def, err := lowerOp(spec.Name, op, res)
		if err != nil {
			return irdl.Dialect{}, err
		}
		d.Ops = append(d.Ops, def)
	}
	return d, nil
}

func lowerOp(dialect string, op OpSpec, res *Resolver) (*irdl.OpDef, error) {
	operands := make([]irdl.OperandDef, len(op.Operands))
	for i, s := range op.Operands {
		c, err := res.Constraint(s.Type)
		if err != nil {
			return nil, err
		}
		operands[i] = irdl.OperandDef{Name: s.Name, Variadic: s.Variadic, Constraint: c}
	}

	results := make([]irdl.ResultDef, len(op.Results))
	for i, s := range op.Results {
		c, err := res.Constraint(s.Type)
		if err != nil {
			return nil, err
		}
		results[i] = irdl.ResultDef{Name: s.Name, Variadic: s.Variadic, Constraint: c}
	}

	attrs := make([]irdl.AttrDef, len(op.Attributes))
	for i, a := range op.Attributes {
		c, err := res.AttrConstraint(a.Type)
		if err != nil {
			return nil, err
		}
		attrs[i] = irdl.AttrDef{Name: a.Name, Constraint: c, Optional: a.Optional}
	}

	traits := make([]irdl.Trait, 0, len(op.Traits))
	for _, name := range op.Traits {
		tr, _ := irdl.TraitByName(name)
		traits = append(traits, tr)
	}

	return irdl.NewOpDef(dialect+"."+op.Name,
		irdl.WithSummary(op.Summary),
		irdl.WithOperands(operands...),
		irdl.WithResults(results...),
		irdl.WithAttributes(attrs...),
		irdl.WithRegions(op.Regions),
		irdl.WithTraits(traits...),
	), nil
}
