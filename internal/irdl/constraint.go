package irdl

import (
	"fmt"
	"strings"

	"github.com/roach88/irkit/internal/ir"
)

// Constraint is a predicate over attributes, used as the declared type of
// an operand or result slot and as the declared kind of an attribute slot.
type Constraint interface {
	// Verify returns nil when a satisfies the constraint.
	Verify(a ir.Attribute) error

	// String describes the constraint for diagnostics, e.g. "vector".
	String() string
}

// AnyAttr accepts every attribute.
func AnyAttr() Constraint { return anyAttr{} }

type anyAttr struct{}

func (anyAttr) Verify(a ir.Attribute) error {
	if a == nil {
		return fmt.Errorf("expected an attribute, got none")
	}
	return nil
}

func (anyAttr) String() string { return "any" }

// Base accepts every attribute whose Go type is T, e.g. any vector type
// regardless of shape.
func Base[T ir.Attribute](name string) Constraint {
	return baseAttr[T]{name: name}
}

type baseAttr[T ir.Attribute] struct {
	name string
}

func (c baseAttr[T]) Verify(a ir.Attribute) error {
	if _, ok := a.(T); ok {
		return nil
	}
	return fmt.Errorf("expected %s, got %s", c.name, describe(a))
}

func (c baseAttr[T]) String() string { return c.name }

// Eq accepts exactly attributes structurally equal to want.
func Eq(want ir.Attribute) Constraint {
	return eqAttr{want: want}
}

type eqAttr struct {
	want ir.Attribute
}

func (c eqAttr) Verify(a ir.Attribute) error {
	if ir.AttrEqual(c.want, a) {
		return nil
	}
	return fmt.Errorf("expected %s, got %s", c.want, describe(a))
}

func (c eqAttr) String() string { return c.want.String() }

// AnyOf accepts attributes satisfying at least one of cs.
func AnyOf(cs ...Constraint) Constraint {
	return anyOf{options: cs}
}

type anyOf struct {
	options []Constraint
}

func (c anyOf) Verify(a ir.Attribute) error {
	for _, opt := range c.options {
		if opt.Verify(a) == nil {
			return nil
		}
	}
	return fmt.Errorf("expected %s, got %s", c, describe(a))
}

func (c anyOf) String() string {
	names := make([]string, len(c.options))
	for i, opt := range c.options {
		names[i] = opt.String()
	}
	return "one of [" + strings.Join(names, ", ") + "]"
}

// Predicate wraps an arbitrary check under a descriptive name.
func Predicate(name string, fn func(ir.Attribute) bool) Constraint {
	return predicate{name: name, fn: fn}
}

type predicate struct {
	name string
	fn   func(ir.Attribute) bool
}

func (c predicate) Verify(a ir.Attribute) error {
	if a != nil && c.fn(a) {
		return nil
	}
	return fmt.Errorf("expected %s, got %s", c.name, describe(a))
}

func (c predicate) String() string { return c.name }

func describe(a ir.Attribute) string {
	if a == nil {
		return "none"
	}
	return a.String()
}
