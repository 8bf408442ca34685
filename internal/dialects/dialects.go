// Package dialects assembles registries from the dialects shipped with
// irkit and from CUE dialect declarations.
package dialects

import (
	"fmt"

	"github.com/roach88/irkit/internal/compiler"
	"github.com/roach88/irkit/internal/dialects/builtin"
	"github.com/roach88/irkit/internal/dialects/vector"
	"github.com/roach88/irkit/internal/irdl"
)

// Standard returns the dialects compiled into irkit, in registration order.
func Standard() []irdl.Dialect {
	return []irdl.Dialect{builtin.Dialect(), vector.Dialect()}
}

// NewRegistry registers the standard dialects followed by every declared
// dialect and freezes the result. Declared slot types resolve against the
// kinds registered before them.
func NewRegistry(declared []*compiler.DialectSpec, opts ...irdl.RegistryOption) (*irdl.Registry, error) {
	reg := irdl.NewRegistry(opts...)
	for _, d := range Standard() {
		if err := reg.RegisterDialect(d); err != nil {
			return nil, err
		}
	}

	res := compiler.NewResolver(reg)
	for _, spec := range declared {
		d, err := compiler.ToDialect(spec, res)
		if err != nil {
			return nil, fmt.Errorf("dialect %s: %w", spec.Name, err)
		}
		if err := reg.RegisterDialect(d); err != nil {
			return nil, err
		}
	}

	reg.Freeze()
	return reg, nil
}
