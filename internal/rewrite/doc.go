// Package rewrite implements a confluent term-rewriting engine over a
// finite alphabet of structured atoms.
//
// The engine canonicalizes type-parameter references for a generics
// subsystem: seed rules derived from generic signatures (same-type,
// conformance, layout and associated-type requirements) are closed under
// critical pairs by a specialized Knuth-Bendix completion procedure. After
// a successful completion, reducing any term to its normal form answers
// equivalence and subtyping queries over generic parameters.
//
// ARCHITECTURE:
//
// Single-Threaded Batch Procedure:
// Completion runs in a single goroutine with no suspension points. The
// entire procedure is a pure function of the seed rules and the protocol
// graph snapshot. This ensures:
//   - Deterministic rule insertion order
//   - Reproducible dump output given identical seeds and graph
//   - Simple reasoning about the worklist
//
// Completion Flow:
//  1. Initialize orients and inserts each seed via AddRule
//  2. AddRule enqueues overlap candidates onto a FIFO worklist
//  3. ComputeConfluentCompletion drains the worklist, forming critical
//     pairs and inserting their oriented closure
//  4. Associated-type merge candidates detected by AddRule are processed
//     after each successful insertion
//  5. On success the rule list is post-simplified and stable-sorted
//
// CRITICAL PATTERNS:
//
// Stable Indices:
// Rules are referenced by vector index. Deletion is a flag, never a
// removal; the rule vector is append-only during completion so worklist
// cross-references stay valid.
//
// Inverted Cardinality Order:
// Among AssociatedType atoms, more protocols sort smaller. Merging
// associated types never shrinks the protocol set, so the merged atom
// sorts below any parent with fewer protocols and AddRule orients the
// rules from such a parent toward it.
package rewrite
