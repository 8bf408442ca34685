// Package irdl defines operation kinds declaratively.
//
// An OpDef describes one kind: its ordered operand and result slots, each
// single or variadic and typed by a Constraint, its attribute slots, its
// region count, shared traits and an optional semantic verifier.
//
// Construction and verification are separate steps. Build checks only that
// the supplied operands and result types fit the slot layout and returns a
// detached operation. Verify runs the semantic rules on demand and reports
// failures as *VerifyError values, never panics.
//
// Dialects bundle kinds and are registered into a Registry, which is frozen
// once setup is complete and then shared read-only.
package irdl
