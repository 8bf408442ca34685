package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a rewrite test: it builds a block from arguments and
// operations of registered kinds, applies rewrite steps, and asserts on
// the resulting block, its verification and the recorded trace.
type Scenario struct {
	// Name uniquely identifies this scenario; it also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Dialects lists CUE dialect declarations to register on top of the
	// standard dialects. Relative paths resolve against the scenario file.
	Dialects []string `yaml:"dialects,omitempty"`

	// Session is the fixed journal session id. Defaults to
	// testutil.DefaultSession.
	Session string `yaml:"session,omitempty"`

	// Args declares the block arguments.
	Args []ArgDecl `yaml:"args,omitempty"`

	// Ops are appended to the block in order.
	Ops []OpDecl `yaml:"ops"`

	// Steps are the rewrites, applied in order.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions are evaluated after every step has run.
	Assertions []Assertion `yaml:"assertions"`
}

// ArgDecl declares one block argument.
type ArgDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// OpDecl declares one operation.
//
// Operands and Results hold one entry per slot of the kind. An entry is a
// value reference (or a type, for results) or a list of them for a
// variadic slot. A value reference is a block argument name, the id of a
// single-result operation, or "id#N" for result N.
//
// Inside a replace step an OpDecl with only an id refers to an operation
// that already exists.
type OpDecl struct {
	ID       string         `yaml:"id"`
	Kind     string         `yaml:"kind,omitempty"`
	Operands []Slot         `yaml:"operands,omitempty"`
	Results  []Slot         `yaml:"results,omitempty"`
	Attrs    map[string]any `yaml:"attrs,omitempty"`
}

// Slot is the entries bound to one slot. A YAML scalar is a one-entry slot.
type Slot []string

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (s *Slot) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = Slot{v}
	case yaml.SequenceNode:
		var vs []string
		if err := node.Decode(&vs); err != nil {
			return err
		}
		*s = Slot(vs)
	default:
		return fmt.Errorf("line %d: slot must be a name or a list of names", node.Line)
	}
	return nil
}

// Step is one rewrite. Exactly one of Erase and Replace is set.
type Step struct {
	// Erase names the operation to erase.
	Erase string `yaml:"erase,omitempty"`

	// Replace names the operation to replace with the With operations.
	Replace string   `yaml:"replace,omitempty"`
	With    []OpDecl `yaml:"with,omitempty"`

	// Results are explicit replacement values, one per result of the
	// replaced operation. A null entry leaves that result's uses alone.
	// When omitted the results of the last new operation are used.
	Results []*string `yaml:"results,omitempty"`

	// Unsafe skips the dangling-use check.
	Unsafe bool `yaml:"unsafe,omitempty"`

	// Error is the expected structural error, one of the StepError values.
	// A step that is expected to fail must leave the block unchanged.
	Error string `yaml:"error,omitempty"`
}

// Expected step errors.
const (
	StepErrNoParent        = "no_parent"
	StepErrDanglingUse     = "dangling_use"
	StepErrArityMismatch   = "arity_mismatch"
	StepErrInvalidReplace  = "invalid_replacement"
	StepErrAlreadyAttached = "already_attached"
	StepErrUnknownKind     = "unknown_kind"
	StepErrSchemaArity     = "schema_arity"
)

// Assertion validates the final program or trace.
type Assertion struct {
	// Type is one of the Assert constants.
	Type string `yaml:"type"`

	// Ops is the expected block order by op id (op_order).
	Ops []string `yaml:"ops,omitempty"`

	// Value and Users check the distinct users of a value, in use order (uses).
	Value string   `yaml:"value,omitempty"`
	Users []string `yaml:"users,omitempty"`

	// Op and Message match a verification diagnostic (diagnostic).
	Op      string `yaml:"op,omitempty"`
	Message string `yaml:"message,omitempty"`

	// Event and Count check how many events of a kind were recorded (trace_count).
	Event string `yaml:"event,omitempty"`
	Count int    `yaml:"count,omitempty"`
}

// Assertion types.
const (
	AssertOpOrder    = "op_order"
	AssertUses       = "uses"
	AssertValid      = "valid"
	AssertDiagnostic = "diagnostic"
	AssertTraceCount = "trace_count"
)

// LoadScenario reads and parses a scenario YAML file. Dialect paths are
// resolved relative to the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving dialect paths against
// baseDir. Unknown fields are rejected so typos surface as errors.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, p := range scenario.Dialects {
		if !filepath.IsAbs(p) && baseDir != "" {
			scenario.Dialects[i] = filepath.Join(baseDir, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Ops) == 0 {
		return fmt.Errorf("ops list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for _, p := range s.Dialects {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("dialect file not found: %s", p)
		}
	}

	names := make(map[string]bool)
	declare := func(where, name string) error {
		if name == "" {
			return fmt.Errorf("%s: name is required", where)
		}
		if names[name] {
			return fmt.Errorf("%s: duplicate name %q", where, name)
		}
		names[name] = true
		return nil
	}

	for i, a := range s.Args {
		if err := declare(fmt.Sprintf("args[%d]", i), a.Name); err != nil {
			return err
		}
		if a.Type == "" {
			return fmt.Errorf("args[%d]: type is required", i)
		}
	}
	for i, op := range s.Ops {
		if err := declare(fmt.Sprintf("ops[%d]", i), op.ID); err != nil {
			return err
		}
		if op.Kind == "" {
			return fmt.Errorf("ops[%d]: kind is required", i)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, step, names, declare); err != nil {
			return err
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(i int, step Step, names map[string]bool, declare func(string, string) error) error {
	switch {
	case step.Erase != "" && step.Replace != "":
		return fmt.Errorf("steps[%d]: erase and replace are mutually exclusive", i)
	case step.Erase != "":
		if len(step.With) > 0 || step.Results != nil {
			return fmt.Errorf("steps[%d]: with and results only apply to replace", i)
		}
		if !names[step.Erase] {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Erase)
		}
	case step.Replace != "":
		if !names[step.Replace] {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Replace)
		}
		for j, op := range step.With {
			where := fmt.Sprintf("steps[%d].with[%d]", i, j)
			if op.Kind == "" {
				if !names[op.ID] {
					return fmt.Errorf("%s: unknown op %q", where, op.ID)
				}
				continue
			}
			if err := declare(where, op.ID); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("steps[%d]: one of erase or replace is required", i)
	}

	if step.Error != "" {
		if _, ok := stepErrors[step.Error]; !ok {
			return fmt.Errorf("steps[%d]: unknown error %q", i, step.Error)
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertOpOrder:
		if a.Ops == nil {
			return fmt.Errorf("assertions[%d]: ops list is required for op_order", index)
		}
	case AssertUses:
		if a.Value == "" {
			return fmt.Errorf("assertions[%d]: value is required for uses", index)
		}
	case AssertValid:
	case AssertDiagnostic:
		if a.Op == "" || a.Message == "" {
			return fmt.Errorf("assertions[%d]: op and message are required for diagnostic", index)
		}
	case AssertTraceCount:
		if a.Event != "erase" && a.Event != "replace" {
			return fmt.Errorf("assertions[%d]: event must be erase or replace for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
