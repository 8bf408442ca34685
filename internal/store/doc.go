// Package store provides the SQLite-backed rewrite journal.
//
// The journal is an append-only log of rewrite events grouped into
// sessions. It records which operation was erased or replaced, where it sat
// in its block and the fingerprints of its replacements. It never stores
// the IR itself, so a journal cannot be used to restore a program.
//
// # Patterns
//
// Logical time:
//   - All ordering uses the seq column (logical clock), never timestamps
//   - Queries order by seq ASC so identical runs read back identically
//
// Idempotent writes:
//   - Sessions are keyed by id, events by (session_id, seq)
//   - Duplicate writes are silently ignored
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Events must reference a session
//
// Fingerprints come from ir.OpFingerprint; the new_ops column holds
// canonical JSON from ir.MarshalCanonical.
package store
