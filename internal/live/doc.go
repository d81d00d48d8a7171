// Package live keeps query results materialized and ships patches to
// subscribers.
//
// A Watcher owns a set of compiled query definitions and, per query, the
// last applied result (a patch.HeldResult). On each refresh it re-executes
// the query against the store, diffs the fresh snapshot against the held
// one, applies the engine's own patches to advance the held copy, and
// notifies subscribers with the patch sequence - skipping notification
// entirely when nothing changed.
//
// Thread-safety model (single-writer, like an event loop):
//   - MarkDirty(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
//   - Subscribe()/Unsubscribe(): safe from any goroutine
//
// All held-result mutation happens on the Run goroutine (or in a direct
// RefreshAll call when no Run loop is used); external callers only enqueue
// refresh requests.
package live
