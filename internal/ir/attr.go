package ir

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Attribute is an immutable compile-time descriptor attached to values (as
// their type) and to operations (as named metadata).
//
// Equality is structural: two attributes describing the same thing must
// report Equal even when they are distinct Go values. Concrete kinds are
// defined by dialects; this package only ships generic data attributes.
type Attribute interface {
	// Equal reports whether other describes the same attribute.
	Equal(other Attribute) bool

	// String returns the attribute's textual form, e.g. "vector<4xf32>".
	String() string
}

// AttrEqual compares two possibly-nil attributes.
func AttrEqual(a, b Attribute) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(b)
}

// StringAttr is a string-valued attribute.
type StringAttr string

// Equal implements Attribute.
func (s StringAttr) Equal(other Attribute) bool {
	o, ok := other.(StringAttr)
	return ok && o == s
}

func (s StringAttr) String() string {
	return strconv.Quote(string(s))
}

// IntAttr is an integer-valued attribute.
type IntAttr int64

// Equal implements Attribute.
func (i IntAttr) Equal(other Attribute) bool {
	o, ok := other.(IntAttr)
	return ok && o == i
}

func (i IntAttr) String() string {
	return strconv.FormatInt(int64(i), 10)
}

// BoolAttr is a boolean attribute.
type BoolAttr bool

// Equal implements Attribute.
func (b BoolAttr) Equal(other Attribute) bool {
	o, ok := other.(BoolAttr)
	return ok && o == b
}

func (b BoolAttr) String() string {
	return strconv.FormatBool(bool(b))
}

// ArrayAttr is an ordered list of attributes.
type ArrayAttr []Attribute

// Equal implements Attribute.
func (a ArrayAttr) Equal(other Attribute) bool {
	o, ok := other.(ArrayAttr)
	if !ok || len(o) != len(a) {
		return false
	}
	for i := range a {
		if !AttrEqual(a[i], o[i]) {
			return false
		}
	}
	return true
}

func (a ArrayAttr) String() string {
	parts := make([]string, len(a))
	for i, elem := range a {
		parts[i] = elem.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// DictAttr maps names to attributes.
// Use SortedKeys for deterministic iteration.
type DictAttr map[string]Attribute

// Equal implements Attribute.
func (d DictAttr) Equal(other Attribute) bool {
	o, ok := other.(DictAttr)
	if !ok || len(o) != len(d) {
		return false
	}
	for k, v := range d {
		ov, exists := o[k]
		if !exists || !AttrEqual(v, ov) {
			return false
		}
	}
	return true
}

func (d DictAttr) String() string {
	keys := d.SortedKeys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s = %s", k, d[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// SortedKeys returns keys in canonical order (UTF-16 code units, RFC 8785).
// Go's string comparison orders by UTF-8 bytes, which differs for
// characters outside the BMP.
func (d DictAttr) SortedKeys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysUTF16)
	return keys
}

// compareKeysUTF16 compares strings by UTF-16 code units.
func compareKeysUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}
