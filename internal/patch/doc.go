// Package patch is the incremental result-set patch engine.
//
// Given the previously observed materialization of a query and a freshly
// computed one, Diff emits a minimal ordered sequence of patches describing
// the change. An Applier folds such a sequence over a held copy of the
// result to reconstruct the new state without re-transmitting the whole
// result when only a few rows changed.
//
// The engine is deliberately not a general sequence diff: it recognizes
// "same length, some rows mutated in place" and degrades everything else
// (length changes, unknown previous, every row changed) to a single full
// replacement. It never detects insertion, deletion, or reordering.
//
// Both Diff and Apply are pure: they never mutate their inputs, hold no
// state, and are safe to call concurrently. A holder may keep reading its
// prior snapshot while another computes the next one.
package patch
