// Package harness runs rewrite scenarios written in YAML.
//
// A scenario builds one block from block arguments and operations of
// registered kinds, applies erase and replace steps through a
// rewrite.Rewriter, verifies the result and checks assertions.
//
// # Scenario Format
//
//	name: fold_fma
//	description: "Replace an fma with a broadcast"
//	dialects: [arith.cue]          # optional CUE declarations
//	session: fold-fma               # optional fixed journal session
//	args:
//	  - {name: mem, type: "memref<4xf32>"}
//	  - {name: i, type: index}
//	ops:
//	  - id: x
//	    kind: vector.load
//	    operands: [mem, [i]]        # one entry per slot; lists for variadic slots
//	    results: ["vector<1xf32>"]
//	steps:
//	  - erase: x
//	    error: dangling_use         # expected structural error
//	  - replace: y
//	    with:
//	      - {id: b, kind: vector.broadcast, operands: [s], results: ["vector<1xf32>"]}
//	assertions:
//	  - {type: op_order, ops: [x, b]}
//	  - {type: uses, value: b, users: [st]}
//	  - {type: valid}
//	  - {type: diagnostic, op: x, message: "..."}
//	  - {type: trace_count, event: replace, count: 1}
//
// A step that expects an error must fail with that error and leave the
// block exactly as it was.
//
// # Deterministic Runs
//
// Each run uses a fresh registry, a testutil.DeterministicClock, a fixed
// session id and an in-memory journal, so the recorded trace is identical
// across runs and can be compared with golden files.
package harness
