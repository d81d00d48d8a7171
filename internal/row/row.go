package row

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Row is one record of a query result: a mapping from column name to scalar
// value. Column names are unique within a row. Use SortedKeys for
// deterministic iteration.
type Row map[string]Value

// SortedKeys returns the row's column names in ascending order.
func (r Row) SortedKeys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Equal reports whether two rows have the same columns mapping to strictly
// equal values.
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		ov, ok := other[k]
		if !ok || !Equal(v, ov) {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of the row. Values are immutable snapshots,
// so sharing them is safe.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the row as a JSON object with sorted keys.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal column %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := MarshalValue(r[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for column %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into a row.
func (r *Row) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = make(Row, len(raw))
	for k, v := range raw {
		val, err := UnmarshalValue(v)
		if err != nil {
			return fmt.Errorf("column %q: %w", k, err)
		}
		(*r)[k] = val
	}
	return nil
}

// ResultSet is the ordered sequence of rows a query returned at one point in
// time. Position is meaningful: the engine assumes index i in one snapshot
// corresponds to index i in the next whenever lengths match.
type ResultSet []Row

// Equal reports whether two result sets have the same length and field-wise
// equal rows at every index.
func (rs ResultSet) Equal(other ResultSet) bool {
	if len(rs) != len(other) {
		return false
	}
	for i := range rs {
		if !rs[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// Clone returns a copy of the result set sharing the row values.
// Rows themselves are treated as immutable, so only the spine is copied.
func (rs ResultSet) Clone() ResultSet {
	if rs == nil {
		return nil
	}
	out := make(ResultSet, len(rs))
	copy(out, rs)
	return out
}
