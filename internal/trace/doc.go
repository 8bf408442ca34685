// Package trace records rewrites into the journal.
//
// A Recorder is attached to a rewrite.Rewriter as its listener. Each
// successful EraseOp or ReplaceOp becomes one store.Event stamped with a
// logical clock value and the recorder's session id. Operations are
// identified by kind name and ir.OpFingerprint.
//
//	rec := trace.NewRecorder("canonicalize")
//	rw := rewrite.New(rewrite.WithListener(rec))
//	// ... rewrites ...
//	err := rec.Flush(ctx, journal)
package trace
