// Package vector is a small dialect of vector memory and arithmetic
// operations. It exercises every part of the schema framework: single and
// variadic operand slots, type-kind constraints, inferred result types and
// kind-specific verifiers.
package vector
