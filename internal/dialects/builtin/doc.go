// Package builtin provides the core type kinds (index, integers, floats,
// vectors, memrefs) and the module container operation.
package builtin
