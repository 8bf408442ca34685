// Package rewrite provides the two sanctioned mutations of attached
// operations: EraseOp and ReplaceOp.
//
// Both are all-or-nothing. Every failure condition is checked before the
// first mutation, so a pass that receives an error can continue with a graph
// whose block order and use sets are exactly as they were.
package rewrite
