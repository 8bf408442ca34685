// Package ir is the graph core of irkit: typed SSA values with use tracking,
// operations, blocks and regions.
//
// All other internal packages import ir; ir imports nothing internal.
//
// Structure:
//   - Containment is a strict forest: Region ⊂ Operation ⊂ Block ⊂ Region.
//     An operation, block or region has at most one parent.
//   - Use edges (value -> operand slot) are the only cross links. Every
//     operand assignment updates the use set of both the old and the new
//     value, so a value's use set always equals the operand slots that
//     reference it.
//   - Block.InsertOperation and Block.EraseOperation are the only primitives
//     that change body order. Higher-level rewriting (package rewrite)
//     composes them.
//
// The graph is single-writer: nothing here locks. Construction never runs
// semantic verification; see package irdl.
package ir
