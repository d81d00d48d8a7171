// Package testutil provides row and result-set fixtures shared across
// package tests.
package testutil

import (
	"fmt"

	"github.com/kndwin/evolu/internal/row"
)

// MustRow builds a row from Go literals, converting each value onto its
// storage class: nil becomes Null, int/int64 Integer, float64 Real,
// string Text, []byte Blob. row.Value values pass through unchanged.
//
// Panics on anything else (including bool - SQLite has no boolean storage
// class), so a bad fixture fails loudly at test setup rather than as a
// confusing assertion mismatch.
func MustRow(columns map[string]any) row.Row {
	r := make(row.Row, len(columns))
	for k, v := range columns {
		r[k] = mustValue(k, v)
	}
	return r
}

// MustResult builds a result set from row literals, preserving order.
func MustResult(rows ...map[string]any) row.ResultSet {
	rs := make(row.ResultSet, len(rows))
	for i, r := range rows {
		rs[i] = MustRow(r)
	}
	return rs
}

func mustValue(column string, v any) row.Value {
	switch val := v.(type) {
	case nil:
		return row.Null{}
	case row.Value:
		return val
	case int:
		return row.Integer(int64(val))
	case int64:
		return row.Integer(val)
	case float64:
		return row.Real(val)
	case string:
		return row.Text(val)
	case []byte:
		return row.Blob(val)
	default:
		panic(fmt.Sprintf("testutil: column %q has unsupported fixture type %T", column, v))
	}
}
