// Package protograph provides the protocol inheritance graph the rewrite
// engine consumes: declared protocols, their transitive ancestry and a
// total order over handles that respects inheritance (ancestors compare
// smaller).
//
// The graph is built once from declarations and is read-only afterwards.
// The rewrite engine requires that the graph not change between
// Initialize and the end of completion; Build returning an immutable
// value is how this package honors that contract.
//
// Ordering is by (inheritance depth, name), where depth counts the
// transitive proper ancestors. An ancestor's ancestor set is a strict
// subset of its descendant's, so ancestors always land at a smaller
// depth, and the name tiebreak keeps the order total and deterministic.
package protograph
