package patch

import "github.com/kndwin/evolu/internal/row"

// Diff compares the previously observed result against a freshly computed
// one and returns the ordered patch sequence transforming the former into
// the latter.
//
// Decision rules, first match wins:
//  1. previous Unknown: nothing to compare against, [ReplaceAll(next)].
//  2. both empty: nothing changed, [].
//  3. lengths differ: row-count changes are never expressed as per-row
//     edits, [ReplaceAll(next)].
//  4. same length: one ReplaceAt per changed row, ascending by index. A row
//     counts as changed when any column of the previous row maps to a value
//     strictly unequal to the value at that column in the next row.
//  5. collapse: no changed rows is []; every row changed collapses to
//     [ReplaceAll(next)] instead of one point-patch per row.
//
// Diff is pure and deterministic: the output depends only on field-wise
// strict equality of the inputs. It never emits Purge.
func Diff(previous HeldResult, next row.ResultSet) []Patch {
	prev, known := previous.Rows()
	if !known {
		return []Patch{ReplaceAll{Rows: next}}
	}

	if len(prev) == 0 && len(next) == 0 {
		return nil
	}

	if len(prev) != len(next) {
		return []Patch{ReplaceAll{Rows: next}}
	}

	var patches []Patch
	for i := range prev {
		if rowChanged(prev[i], next[i]) {
			patches = append(patches, ReplaceAt{Index: i, Row: next[i]})
		}
	}

	if len(patches) == len(next) && len(patches) > 0 {
		return []Patch{ReplaceAll{Rows: next}}
	}
	return patches
}

// rowChanged reports whether any column of prev maps to a value strictly
// unequal to next's value at the same column. Columns are enumerated from
// the previous row, in sorted order, so the short-circuit point is
// well-defined; the first differing column decides.
func rowChanged(prev, next row.Row) bool {
	for _, k := range prev.SortedKeys() {
		if !row.Equal(prev[k], next[k]) {
			return true
		}
	}
	return false
}
