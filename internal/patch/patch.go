package patch

import "github.com/kndwin/evolu/internal/row"

// Patch is a sealed interface describing a single change to a held result.
// Only ReplaceAll, ReplaceAt, and Purge implement it; the applier switches
// exhaustively over these three cases.
type Patch interface {
	patch() // Sealed - only these types implement it
}

// ReplaceAll replaces the entire held result with Rows.
type ReplaceAll struct {
	Rows row.ResultSet
}

func (ReplaceAll) patch() {}

// ReplaceAt replaces the row at Index with Row. Only meaningful against a
// held result with the same length as when the patch was produced.
type ReplaceAt struct {
	Index int
	Row   row.Row
}

func (ReplaceAt) patch() {}

// Purge invalidates the held result: it becomes Unknown regardless of its
// prior state. Diff never emits Purge; only holders do, on teardown or
// explicit invalidation.
type Purge struct{}

func (Purge) patch() {}

// HeldResult is the state a holder keeps between refreshes: either a known,
// concrete result set, or the Unknown sentinel meaning no result has ever
// been observed (or it has been invalidated). Unknown is never the same
// thing as a known empty result.
type HeldResult struct {
	known bool
	rows  row.ResultSet
}

// Unknown returns the held-result sentinel for "never observed".
func Unknown() HeldResult {
	return HeldResult{}
}

// Known wraps a concrete result set, including the empty one.
func Known(rows row.ResultSet) HeldResult {
	return HeldResult{known: true, rows: rows}
}

// IsKnown reports whether a concrete result has been observed.
func (h HeldResult) IsKnown() bool {
	return h.known
}

// Rows returns the held result set. The second return is false for Unknown.
func (h HeldResult) Rows() (row.ResultSet, bool) {
	return h.rows, h.known
}

// Equal reports whether two held results are the same state: both Unknown,
// or both known with field-wise equal rows at every index.
func (h HeldResult) Equal(other HeldResult) bool {
	if h.known != other.known {
		return false
	}
	if !h.known {
		return true
	}
	return h.rows.Equal(other.rows)
}
