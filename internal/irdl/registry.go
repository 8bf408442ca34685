package irdl

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/roach88/irkit/internal/ir"
)

// TypeDef declares a type kind. Constraint accepts every type of the kind
// and is what slot declarations refer to by kind name.
type TypeDef struct {
	Name       string
	Summary    string
	Constraint Constraint
}

// Dialect is a named bundle of operation and type kinds.
type Dialect struct {
	Name  string
	Ops   []*OpDef
	Types []TypeDef
}

// Registry maps qualified kind names to schemas.
//
// A registry has two phases. During setup dialects are registered from a
// single goroutine. After Freeze the registry is read-only and safe to share
// across goroutines.
type Registry struct {
	mu       sync.RWMutex
	frozen   atomic.Bool
	dialects map[string]*Dialect
	ops      map[string]*OpDef
	types    map[string]TypeDef
	logger   *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used for registration events.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry returns an empty, open registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		dialects: make(map[string]*Dialect),
		ops:      make(map[string]*OpDef),
		types:    make(map[string]TypeDef),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterDialect adds every kind of d. Either all kinds are registered or
// none are: names are validated against the dialect and the existing
// registry before anything is stored.
func (r *Registry) RegisterDialect(d Dialect) error {
	if r.frozen.Load() {
		return fmt.Errorf("register dialect %q: %w", d.Name, ErrRegistryFrozen)
	}
	if d.Name == "" || strings.Contains(d.Name, ".") {
		return fmt.Errorf("dialect name %q: %w", d.Name, ErrInvalidKindName)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.dialects[d.Name]; ok {
		return fmt.Errorf("dialect %q: %w", d.Name, ErrDuplicateKind)
	}

	seen := make(map[string]bool, len(d.Ops)+len(d.Types))
	for _, op := range d.Ops {
		if op == nil {
			return fmt.Errorf("dialect %q: nil operation schema: %w", d.Name, ErrInvalidKindName)
		}
		if err := checkKindName(d.Name, op.Name()); err != nil {
			return err
		}
		if seen[op.Name()] || r.ops[op.Name()] != nil {
			return fmt.Errorf("operation %q: %w", op.Name(), ErrDuplicateKind)
		}
		seen[op.Name()] = true
	}
	for _, td := range d.Types {
		if err := checkKindName(d.Name, td.Name); err != nil {
			return err
		}
		if _, taken := r.types[td.Name]; seen[td.Name] || taken {
			return fmt.Errorf("type %q: %w", td.Name, ErrDuplicateKind)
		}
		seen[td.Name] = true
	}

	stored := &Dialect{
		Name:  d.Name,
		Ops:   slices.Clone(d.Ops),
		Types: slices.Clone(d.Types),
	}
	for _, op := range stored.Ops {
		r.ops[op.Name()] = op
	}
	for i := range stored.Types {
		if stored.Types[i].Constraint == nil {
			stored.Types[i].Constraint = AnyAttr()
		}
		r.types[stored.Types[i].Name] = stored.Types[i]
	}
	r.dialects[d.Name] = stored

	r.logger.Debug("registered dialect",
		"dialect", d.Name,
		"ops", len(stored.Ops),
		"types", len(stored.Types))
	return nil
}

func checkKindName(dialect, name string) error {
	prefix, kind, ok := strings.Cut(name, ".")
	if !ok || prefix != dialect || kind == "" || strings.Contains(kind, ".") {
		return fmt.Errorf("kind %q in dialect %q: %w", name, dialect, ErrInvalidKindName)
	}
	return nil
}

// Freeze closes registration. It is idempotent.
func (r *Registry) Freeze() {
	if r.frozen.CompareAndSwap(false, true) {
		r.logger.Debug("registry frozen", "dialects", len(r.dialects))
	}
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool { return r.frozen.Load() }

// LookupOp returns the schema registered under the qualified name.
func (r *Registry) LookupOp(name string) (*OpDef, error) {
	r.mu.RLock()
	def, ok := r.ops[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownKindError{Name: name}
	}
	return def, nil
}

// LookupType returns the type kind registered under the qualified name.
func (r *Registry) LookupType(name string) (TypeDef, error) {
	r.mu.RLock()
	td, ok := r.types[name]
	r.mu.RUnlock()
	if !ok {
		return TypeDef{}, &UnknownKindError{Name: name}
	}
	return td, nil
}

// LookupDialect returns the dialect registered under name.
func (r *Registry) LookupDialect(name string) (Dialect, error) {
	r.mu.RLock()
	d, ok := r.dialects[name]
	r.mu.RUnlock()
	if !ok {
		return Dialect{}, &UnknownKindError{Name: name}
	}
	return Dialect{Name: d.Name, Ops: slices.Clone(d.Ops), Types: slices.Clone(d.Types)}, nil
}

// Dialects returns the registered dialect names in sorted order.
func (r *Registry) Dialects() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.dialects))
	for name := range r.dialects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Ops returns every registered operation schema sorted by kind name.
func (r *Registry) Ops() []*OpDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]*OpDef, 0, len(r.ops))
	for _, def := range r.ops {
		defs = append(defs, def)
	}
	slices.SortFunc(defs, func(a, b *OpDef) int { return strings.Compare(a.name, b.name) })
	return defs
}

// Types returns every registered type kind sorted by name.
func (r *Registry) Types() []TypeDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]TypeDef, 0, len(r.types))
	for _, td := range r.types {
		defs = append(defs, td)
	}
	slices.SortFunc(defs, func(a, b TypeDef) int { return strings.Compare(a.Name, b.Name) })
	return defs
}

// Build resolves kind and delegates to (*OpDef).Build.
func (r *Registry) Build(kind string, operands []OperandArg, results []ResultArg, attrs map[string]ir.Attribute) (*ir.Operation, error) {
	def, err := r.LookupOp(kind)
	if err != nil {
		return nil, err
	}
	return def.Build(operands, results, attrs)
}

// Verify resolves op's kind and delegates to (*OpDef).Verify. An
// unregistered kind yields *UnknownKindError rather than *VerifyError.
func (r *Registry) Verify(op *ir.Operation) error {
	def, err := r.LookupOp(op.Name())
	if err != nil {
		return err
	}
	return def.Verify(op)
}
