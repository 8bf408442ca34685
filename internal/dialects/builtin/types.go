package builtin

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/roach88/irkit/internal/ir"
)

// IndexType is the target-sized integer type used for subscripts.
type IndexType struct{}

func (IndexType) Equal(other ir.Attribute) bool {
	_, ok := other.(IndexType)
	return ok
}

func (IndexType) String() string { return "index" }

// IntegerType is a signless integer of Width bits. i1 is the boolean type.
type IntegerType struct {
	Width int
}

func (t IntegerType) Equal(other ir.Attribute) bool {
	o, ok := other.(IntegerType)
	return ok && o.Width == t.Width
}

func (t IntegerType) String() string { return "i" + strconv.Itoa(t.Width) }

// FloatType is an IEEE float of Width bits (16, 32 or 64).
type FloatType struct {
	Width int
}

func (t FloatType) Equal(other ir.Attribute) bool {
	o, ok := other.(FloatType)
	return ok && o.Width == t.Width
}

func (t FloatType) String() string { return "f" + strconv.Itoa(t.Width) }

// Common scalar types.
var (
	Index = IndexType{}
	I1    = IntegerType{Width: 1}
	I32   = IntegerType{Width: 32}
	I64   = IntegerType{Width: 64}
	F16   = FloatType{Width: 16}
	F32   = FloatType{Width: 32}
	F64   = FloatType{Width: 64}
)

// VectorType is a fixed-shape vector of scalars. An empty shape is a
// 0-d vector holding a single element.
type VectorType struct {
	Dims []int64
	Elem ir.Attribute
}

// Vector returns a vector type of elem with the given shape.
func Vector(elem ir.Attribute, shape ...int64) VectorType {
	return VectorType{Dims: slices.Clone(shape), Elem: elem}
}

func (t VectorType) Equal(other ir.Attribute) bool {
	o, ok := other.(VectorType)
	return ok && slices.Equal(o.Dims, t.Dims) && ir.AttrEqual(o.Elem, t.Elem)
}

func (t VectorType) String() string { return shapedString("vector", t.Dims, t.Elem) }

// ElementType returns the scalar element type.
func (t VectorType) ElementType() ir.Attribute { return t.Elem }

// Shape returns a copy of the dimensions.
func (t VectorType) Shape() []int64 { return slices.Clone(t.Dims) }

// Rank returns the number of dimensions.
func (t VectorType) Rank() int { return len(t.Dims) }

// MemRefType is a reference to a region of memory holding elements of Elem
// laid out with the given shape.
type MemRefType struct {
	Dims []int64
	Elem ir.Attribute
}

// MemRef returns a memref type of elem with the given shape.
func MemRef(elem ir.Attribute, shape ...int64) MemRefType {
	return MemRefType{Dims: slices.Clone(shape), Elem: elem}
}

func (t MemRefType) Equal(other ir.Attribute) bool {
	o, ok := other.(MemRefType)
	return ok && slices.Equal(o.Dims, t.Dims) && ir.AttrEqual(o.Elem, t.Elem)
}

func (t MemRefType) String() string { return shapedString("memref", t.Dims, t.Elem) }

// ElementType returns the element type.
func (t MemRefType) ElementType() ir.Attribute { return t.Elem }

// Shape returns a copy of the dimensions.
func (t MemRefType) Shape() []int64 { return slices.Clone(t.Dims) }

// Rank returns the number of dimensions.
func (t MemRefType) Rank() int { return len(t.Dims) }

func shapedString(kind string, shape []int64, elem ir.Attribute) string {
	var sb strings.Builder
	sb.WriteString(kind)
	sb.WriteByte('<')
	for _, d := range shape {
		sb.WriteString(strconv.FormatInt(d, 10))
		sb.WriteByte('x')
	}
	if elem == nil {
		sb.WriteString("?")
	} else {
		sb.WriteString(elem.String())
	}
	sb.WriteByte('>')
	return sb.String()
}

// ParseType parses the textual form produced by the String methods of this
// package's types, e.g. "index", "i1", "f32", "vector<4xf32>",
// "memref<2x3xi32>".
func ParseType(s string) (ir.Attribute, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "index":
		return Index, nil
	case strings.HasPrefix(s, "vector<") && strings.HasSuffix(s, ">"):
		shape, elem, err := parseShaped(s[len("vector<") : len(s)-1])
		if err != nil {
			return nil, fmt.Errorf("parse type %q: %w", s, err)
		}
		if !isScalar(elem) {
			return nil, fmt.Errorf("parse type %q: %w: vector element must be a scalar", s, ErrInvalidType)
		}
		return VectorType{Dims: shape, Elem: elem}, nil
	case strings.HasPrefix(s, "memref<") && strings.HasSuffix(s, ">"):
		shape, elem, err := parseShaped(s[len("memref<") : len(s)-1])
		if err != nil {
			return nil, fmt.Errorf("parse type %q: %w", s, err)
		}
		return MemRefType{Dims: shape, Elem: elem}, nil
	case strings.HasPrefix(s, "i"):
		w, err := parseWidth(s[1:])
		if err != nil {
			return nil, fmt.Errorf("parse type %q: %w", s, err)
		}
		return IntegerType{Width: w}, nil
	case strings.HasPrefix(s, "f"):
		w, err := parseWidth(s[1:])
		if err != nil {
			return nil, fmt.Errorf("parse type %q: %w", s, err)
		}
		if w != 16 && w != 32 && w != 64 {
			return nil, fmt.Errorf("parse type %q: %w: unsupported float width %d", s, ErrInvalidType, w)
		}
		return FloatType{Width: w}, nil
	}
	return nil, fmt.Errorf("parse type %q: %w", s, ErrInvalidType)
}

// MustParseType is ParseType for literals known to be valid.
func MustParseType(s string) ir.Attribute {
	t, err := ParseType(s)
	if err != nil {
		panic(err)
	}
	return t
}

func parseWidth(s string) (int, error) {
	if s == "" || s[0] < '1' || s[0] > '9' {
		return 0, fmt.Errorf("%w: bad bit width %q", ErrInvalidType, s)
	}
	w, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: bad bit width %q", ErrInvalidType, s)
	}
	return w, nil
}

// parseShaped splits "4x3xf32" into its dimensions and element type.
func parseShaped(inner string) ([]int64, ir.Attribute, error) {
	var shape []int64
	for {
		i := 0
		for i < len(inner) && inner[i] >= '0' && inner[i] <= '9' {
			i++
		}
		if i == 0 {
			break
		}
		if i == len(inner) || inner[i] != 'x' {
			return nil, nil, fmt.Errorf("%w: dimension not followed by 'x'", ErrInvalidType)
		}
		d, err := strconv.ParseInt(inner[:i], 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidType, err)
		}
		shape = append(shape, d)
		inner = inner[i+1:]
	}
	elem, err := ParseType(inner)
	if err != nil {
		return nil, nil, err
	}
	return shape, elem, nil
}

func isScalar(t ir.Attribute) bool {
	switch t.(type) {
	case IndexType, IntegerType, FloatType:
		return true
	}
	return false
}
