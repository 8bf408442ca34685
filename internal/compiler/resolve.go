package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/irkit/internal/dialects/builtin"
	"github.com/roach88/irkit/internal/ir"
	"github.com/roach88/irkit/internal/irdl"
)

// ErrUnknownType is returned for constraint strings that name no type kind
// and do not parse as a type.
var ErrUnknownType = errors.New("unknown type")

// Resolver turns declared constraint strings into irdl constraints.
type Resolver struct {
	reg *irdl.Registry
}

// NewResolver returns a resolver that looks type kinds up in reg. A nil
// registry resolves only the builtin kinds.
func NewResolver(reg *irdl.Registry) *Resolver {
	return &Resolver{reg: reg}
}

var builtinKinds = map[string]irdl.Constraint{
	"index":   builtin.AnyIndex,
	"integer": builtin.AnyInteger,
	"float":   builtin.AnyFloat,
	"vector":  builtin.AnyVector,
	"memref":  builtin.AnyMemRef,
}

// Constraint resolves a slot type string.
//
// Resolution order: "any"; alternatives separated by "|"; a registered type
// kind, qualified ("builtin.vector") or short ("vector") for builtin kinds;
// finally a concrete builtin type ("vector<4xf32>") matched by equality.
func (r *Resolver) Constraint(s string) (irdl.Constraint, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "any" {
		return irdl.AnyAttr(), nil
	}

	if strings.Contains(s, "|") {
		parts := strings.Split(s, "|")
		options := make([]irdl.Constraint, 0, len(parts))
		for _, p := range parts {
			c, err := r.Constraint(p)
			if err != nil {
				return nil, err
			}
			options = append(options, c)
		}
		return irdl.AnyOf(options...), nil
	}

	if c, ok := r.kind(s); ok {
		return c, nil
	}

	t, err := builtin.ParseType(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return irdl.Eq(t), nil
}

func (r *Resolver) kind(s string) (irdl.Constraint, bool) {
	if r.reg == nil {
		c, ok := builtinKinds[s]
		return c, ok
	}
	name := s
	if !strings.Contains(name, ".") {
		name = "builtin." + name
	}
	td, err := r.reg.LookupType(name)
	if err != nil {
		return nil, false
	}
	return td.Constraint, true
}

var attrKinds = map[string]irdl.Constraint{
	"any":    irdl.AnyAttr(),
	"string": irdl.Base[ir.StringAttr]("string"),
	"int":    irdl.Base[ir.IntAttr]("int"),
	"bool":   irdl.Base[ir.BoolAttr]("bool"),
	"array":  irdl.Base[ir.ArrayAttr]("array"),
	"dict":   irdl.Base[ir.DictAttr]("dict"),
}

// AttrConstraint resolves an attribute kind string.
func (r *Resolver) AttrConstraint(s string) (irdl.Constraint, error) {
	if s == "" {
		return irdl.AnyAttr(), nil
	}
	c, ok := attrKinds[s]
	if !ok {
		return nil, fmt.Errorf("%w: attribute kind %q", ErrUnknownType, s)
	}
	return c, nil
}
