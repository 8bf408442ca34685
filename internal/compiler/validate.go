package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/irkit/internal/irdl"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedSpecType = "E100" // unsupported spec type for validation

	// DialectSpec errors (E101-E109)
	ErrInvalidDialectName = "E101" // dialect name empty or dotted
	ErrDialectNoOps       = "E102" // at least one op required
	ErrDuplicateOpName    = "E103" // duplicate op name
	ErrInvalidSlotType    = "E104" // slot type does not resolve
	ErrDuplicateSlotName  = "E105" // duplicate operand/result/attribute name
	ErrUnknownTrait       = "E106" // trait not known
	ErrInvalidRegionCount = "E107" // negative region count
	ErrInvalidAttrKind    = "E108" // attribute kind not known
	ErrInvalidOpName      = "E109" // op name not an identifier
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is a non-empty list of validation errors used as a
// single error value.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate validates a compiled dialect against schema rules, resolving
// slot types against the builtin kinds only.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *DialectSpec:
		return ValidateWith(spec, NewResolver(nil))
	case DialectSpec:
		return ValidateWith(&spec, NewResolver(nil))
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported spec type: %T", v),
			Code:    ErrUnsupportedSpecType,
		}}
	}
}

// opNamePattern matches op names: lowercase identifier, underscores allowed.
var opNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateWith validates spec, resolving slot types with res.
func ValidateWith(spec *DialectSpec, res *Resolver) []ValidationError {
	var errs []ValidationError

	// E101: dialect name
	if strings.TrimSpace(spec.Name) == "" || strings.Contains(spec.Name, ".") {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("invalid dialect name %q", spec.Name),
			Code:    ErrInvalidDialectName,
		})
	}

	// E102: at least one op
	if len(spec.Ops) == 0 {
		errs = append(errs, ValidationError{
			Field:   "ops",
			Message: "at least one op is required",
			Code:    ErrDialectNoOps,
		})
	}

	opNames := make(map[string]bool)
	for i, op := range spec.Ops {
		errs = append(errs, validateOp(op, fmt.Sprintf("ops[%d]", i), opNames, res)...)
	}

	return errs
}

func validateOp(op OpSpec, path string, opNames map[string]bool, res *Resolver) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
			Line:    op.Line,
		})
	}

	// E109: op name format
	if !opNamePattern.MatchString(op.Name) {
		add(path+".name", ErrInvalidOpName, "invalid op name %q, expected a lowercase identifier", op.Name)
	}

	// E103: duplicate op name
	if opNames[op.Name] {
		add(path+".name", ErrDuplicateOpName, "duplicate op name: %q", op.Name)
	}
	opNames[op.Name] = true

	// Operands, results and attributes share one accessor namespace
	slotNames := make(map[string]bool)
	checkName := func(field, name string) {
		// E105: duplicate slot name
		if slotNames[name] {
			add(field, ErrDuplicateSlotName, "duplicate slot name %q in op %q", name, op.Name)
		}
		slotNames[name] = true
	}

	for j, s := range op.Operands {
		field := fmt.Sprintf("%s.operands[%d]", path, j)
		checkName(field, s.Name)
		// E104: slot type must resolve
		if _, err := res.Constraint(s.Type); err != nil {
			add(field+".type", ErrInvalidSlotType, "operand %q: %v", s.Name, err)
		}
	}
	for j, s := range op.Results {
		field := fmt.Sprintf("%s.results[%d]", path, j)
		checkName(field, s.Name)
		if _, err := res.Constraint(s.Type); err != nil {
			add(field+".type", ErrInvalidSlotType, "result %q: %v", s.Name, err)
		}
	}
	for j, a := range op.Attributes {
		field := fmt.Sprintf("%s.attributes[%d]", path, j)
		checkName(field, a.Name)
		// E108: attribute kind must be known
		if _, err := res.AttrConstraint(a.Type); err != nil {
			add(field+".type", ErrInvalidAttrKind, "attribute %q: %v", a.Name, err)
		}
	}

	// E106: traits must be known
	for j, name := range op.Traits {
		if _, ok := irdl.TraitByName(name); !ok {
			add(fmt.Sprintf("%s.traits[%d]", path, j), ErrUnknownTrait, "unknown trait %q", name)
		}
	}

	// E107: region count
	if op.Regions < 0 {
		add(path+".regions", ErrInvalidRegionCount, "region count must be non-negative, got %d", op.Regions)
	}

	return errs
}
