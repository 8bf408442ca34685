package harness

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/irkit/internal/dialects/builtin"
	"github.com/roach88/irkit/internal/ir"
	"github.com/roach88/irkit/internal/irdl"
)

// program is the graph a scenario builds, with its names.
type program struct {
	reg    *irdl.Registry
	module *ir.Operation
	block  *ir.Block
	args   map[string]*ir.Value
	ops    map[string]*ir.Operation
	ids    map[*ir.Operation]string
}

func newProgram(reg *irdl.Registry, args []ArgDecl) (*program, error) {
	types := make([]ir.Attribute, len(args))
	for i, a := range args {
		t, err := builtin.ParseType(a.Type)
		if err != nil {
			return nil, fmt.Errorf("args[%d] %s: %w", i, a.Name, err)
		}
		types[i] = t
	}

	module := builtin.NewModule(types...)
	p := &program{
		reg:    reg,
		module: module,
		block:  builtin.ModuleBody(module),
		args:   make(map[string]*ir.Value, len(args)),
		ops:    make(map[string]*ir.Operation),
		ids:    map[*ir.Operation]string{module: "module"},
	}
	for i, a := range args {
		p.args[a.Name] = p.block.Arg(i)
	}
	return p, nil
}

// value resolves a value reference: an argument name, a single-result op
// id, or "id#N".
func (p *program) value(ref string) (*ir.Value, error) {
	id, idx, indexed := strings.Cut(ref, "#")
	if !indexed {
		if v, ok := p.args[id]; ok {
			return v, nil
		}
	}
	op, ok := p.ops[id]
	if !ok {
		return nil, fmt.Errorf("unknown value %q", ref)
	}
	if !indexed {
		v, err := ir.ValueOf(op)
		if err != nil {
			return nil, fmt.Errorf("value %q: %w", ref, err)
		}
		return v, nil
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 || n >= op.NumResults() {
		return nil, fmt.Errorf("value %q: %s has %d results", ref, id, op.NumResults())
	}
	return op.Result(n), nil
}

// build creates a detached operation from d and names it.
func (p *program) build(d OpDecl) (*ir.Operation, error) {
	operands := make([]irdl.OperandArg, len(d.Operands))
	for i, slot := range d.Operands {
		vals := make([]*ir.Value, len(slot))
		for j, ref := range slot {
			v, err := p.value(ref)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", d.ID, err)
			}
			vals[j] = v
		}
		operands[i] = irdl.Values(vals)
	}

	results := make([]irdl.ResultArg, len(d.Results))
	for i, slot := range d.Results {
		types := make([]ir.Attribute, len(slot))
		for j, s := range slot {
			t, err := builtin.ParseType(s)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", d.ID, err)
			}
			types[j] = t
		}
		results[i] = irdl.Types(types...)
	}

	attrs := make(map[string]ir.Attribute, len(d.Attrs))
	for k, v := range d.Attrs {
		a, err := toAttr(v)
		if err != nil {
			return nil, fmt.Errorf("%s: attribute %q: %w", d.ID, k, err)
		}
		attrs[k] = a
	}

	op, err := p.reg.Build(d.Kind, operands, results, attrs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.ID, err)
	}
	p.ops[d.ID] = op
	p.ids[op] = d.ID
	return op, nil
}

// forget drops a freshly built operation that was never attached, so its
// operands lose the uses it recorded.
func (p *program) forget(op *ir.Operation) {
	op.DropAllReferences()
	delete(p.ops, p.ids[op])
	delete(p.ids, op)
}

// name returns the scenario id of op, or its kind for unnamed operations.
func (p *program) name(op *ir.Operation) string {
	if id, ok := p.ids[op]; ok {
		return id
	}
	return op.Name()
}

func (p *program) order() []string {
	ids := make([]string, 0, p.block.Len())
	for _, op := range p.block.Operations() {
		ids = append(ids, p.name(op))
	}
	return ids
}

// toAttr converts a decoded YAML value to a data attribute.
func toAttr(v any) (ir.Attribute, error) {
	switch val := v.(type) {
	case string:
		return ir.StringAttr(val), nil
	case int:
		return ir.IntAttr(val), nil
	case int64:
		return ir.IntAttr(val), nil
	case bool:
		return ir.BoolAttr(val), nil
	case []any:
		arr := make(ir.ArrayAttr, len(val))
		for i, e := range val {
			a, err := toAttr(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = a
		}
		return arr, nil
	case map[string]any:
		dict := make(ir.DictAttr, len(val))
		for k, e := range val {
			a, err := toAttr(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			dict[k] = a
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported attribute value %v (%T)", v, v)
	}
}
