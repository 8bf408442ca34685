package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// DialectSpec is a dialect declaration compiled from CUE, before its type
// constraints are resolved.
type DialectSpec struct {
	Name    string   `json:"name"`
	Summary string   `json:"summary,omitempty"`
	Ops     []OpSpec `json:"ops"`
}

// OpSpec declares one operation kind. Name is unqualified.
type OpSpec struct {
	Name       string     `json:"name"`
	Summary    string     `json:"summary,omitempty"`
	Operands   []SlotSpec `json:"operands,omitempty"`
	Results    []SlotSpec `json:"results,omitempty"`
	Attributes []AttrSpec `json:"attributes,omitempty"`
	Regions    int        `json:"regions,omitempty"`
	Traits     []string   `json:"traits,omitempty"`
	Line       int        `json:"-"`
}

// SlotSpec declares an operand or result slot. Type is a constraint string:
// "any", a type kind such as "vector", a concrete type such as
// "vector<4xf32>", or alternatives separated by "|".
type SlotSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Variadic bool   `json:"variadic,omitempty"`
}

// AttrSpec declares an attribute slot. Type is one of the data attribute
// kinds: "any", "string", "int", "bool", "array", "dict".
type AttrSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

// CompileDialect parses a CUE value into a DialectSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the dialect struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`dialect: arith: { op: addi: { ... } }`)
//	spec, err := CompileDialect(v.LookupPath(cue.ParsePath("dialect.arith")))
func CompileDialect(v cue.Value) (*DialectSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &DialectSpec{}

	// Dialect name is the struct label
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	var err error
	if spec.Summary, err = optionalString(v, "summary"); err != nil {
		return nil, err
	}

	opVal := v.LookupPath(cue.ParsePath("op"))
	if !opVal.Exists() {
		return nil, &CompileError{
			Field:   "op",
			Message: "at least one op is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := opVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		op, err := parseOp(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Ops = append(spec.Ops, op)
	}

	return spec, nil
}

// parseOp extracts one op declaration.
func parseOp(name string, v cue.Value) (OpSpec, error) {
	op := OpSpec{Name: name, Line: v.Pos().Line()}

	var err error
	if op.Summary, err = optionalString(v, "summary"); err != nil {
		return op, err
	}
	if op.Operands, err = parseSlots(v, name, "operands"); err != nil {
		return op, err
	}
	if op.Results, err = parseSlots(v, name, "results"); err != nil {
		return op, err
	}
	if op.Attributes, err = parseAttrs(v, name); err != nil {
		return op, err
	}

	regionsVal := v.LookupPath(cue.ParsePath("regions"))
	if regionsVal.Exists() {
		n, err := regionsVal.Int64()
		if err != nil {
			return op, formatCUEError(err)
		}
		op.Regions = int(n)
	}

	traitsVal := v.LookupPath(cue.ParsePath("traits"))
	if traitsVal.Exists() {
		traitIter, err := traitsVal.List()
		if err != nil {
			return op, formatCUEError(err)
		}
		for traitIter.Next() {
			s, err := traitIter.Value().String()
			if err != nil {
				return op, formatCUEError(err)
			}
			op.Traits = append(op.Traits, s)
		}
	}

	return op, nil
}

// parseSlots reads an ordered slot struct. Each field is either a
// constraint string or a struct {type, variadic}.
func parseSlots(v cue.Value, opName, field string) ([]SlotSpec, error) {
	slotsVal := v.LookupPath(cue.ParsePath(field))
	if !slotsVal.Exists() {
		return nil, nil // slots are optional
	}

	iter, err := slotsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var slots []SlotSpec
	for iter.Next() {
		slot := SlotSpec{Name: iter.Label()}
		sv := iter.Value()

		switch sv.IncompleteKind() {
		case cue.StringKind:
			if slot.Type, err = sv.String(); err != nil {
				return nil, formatCUEError(err)
			}
		case cue.StructKind:
			if slot.Type, err = optionalString(sv, "type"); err != nil {
				return nil, err
			}
			if slot.Variadic, err = optionalBool(sv, "variadic"); err != nil {
				return nil, err
			}
		default:
			return nil, &CompileError{
				Field:   fmt.Sprintf("op.%s.%s.%s", opName, field, slot.Name),
				Message: "slot must be a type string or {type, variadic}",
				Pos:     sv.Pos(),
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}

// parseAttrs reads the attribute struct. Each field is either an attribute
// kind string or a struct {type, optional}.
func parseAttrs(v cue.Value, opName string) ([]AttrSpec, error) {
	attrsVal := v.LookupPath(cue.ParsePath("attributes"))
	if !attrsVal.Exists() {
		return nil, nil
	}

	iter, err := attrsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var attrs []AttrSpec
	for iter.Next() {
		attr := AttrSpec{Name: iter.Label()}
		av := iter.Value()

		switch av.IncompleteKind() {
		case cue.StringKind:
			if attr.Type, err = av.String(); err != nil {
				return nil, formatCUEError(err)
			}
		case cue.StructKind:
			if attr.Type, err = optionalString(av, "type"); err != nil {
				return nil, err
			}
			if attr.Optional, err = optionalBool(av, "optional"); err != nil {
				return nil, err
			}
		default:
			return nil, &CompileError{
				Field:   fmt.Sprintf("op.%s.attributes.%s", opName, attr.Name),
				Message: "attribute must be a kind string or {type, optional}",
				Pos:     av.Pos(),
			}
		}
		attrs = append(attrs, attr)
	}
	return attrs, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func optionalBool(v cue.Value, field string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
