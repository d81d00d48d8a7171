package row

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowSortedKeys(t *testing.T) {
	r := Row{
		"zebra":  Text("z"),
		"apple":  Text("a"),
		"banana": Text("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, r.SortedKeys())
}

func TestRowEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Row
		want bool
	}{
		{
			name: "identical",
			a:    Row{"id": Integer(1), "title": Text("x")},
			b:    Row{"id": Integer(1), "title": Text("x")},
			want: true,
		},
		{
			name: "value differs",
			a:    Row{"id": Integer(1)},
			b:    Row{"id": Integer(2)},
			want: false,
		},
		{
			name: "class differs",
			a:    Row{"id": Integer(1)},
			b:    Row{"id": Text("1")},
			want: false,
		},
		{
			name: "column missing",
			a:    Row{"id": Integer(1), "title": Text("x")},
			b:    Row{"id": Integer(1)},
			want: false,
		},
		{
			name: "both empty",
			a:    Row{},
			b:    Row{},
			want: true,
		},
		{
			name: "null columns",
			a:    Row{"done": Null{}},
			b:    Row{"done": Null{}},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestRowJSONRoundTrip(t *testing.T) {
	r := Row{
		"id":    Integer(7),
		"score": Real(0.5),
		"title": Text("groceries"),
		"done":  Null{},
		"raw":   Blob{0x01},
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var back Row
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, r.Equal(back))
}

func TestRowMarshalSortedKeys(t *testing.T) {
	r := Row{"b": Integer(2), "a": Integer(1), "c": Integer(3)}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, string(data))
}

func TestResultSetEqual(t *testing.T) {
	a := ResultSet{
		{"id": Integer(1)},
		{"id": Integer(2)},
	}
	b := ResultSet{
		{"id": Integer(1)},
		{"id": Integer(2)},
	}

	assert.True(t, a.Equal(b))
	assert.True(t, ResultSet{}.Equal(ResultSet{}))
	assert.False(t, a.Equal(b[:1]))

	b[1] = Row{"id": Integer(9)}
	assert.False(t, a.Equal(b))
}

func TestResultSetJSONRoundTrip(t *testing.T) {
	rs := ResultSet{
		{"id": Integer(1), "title": Text("first")},
		{"id": Integer(2), "title": Null{}},
	}

	data, err := json.Marshal(rs)
	require.NoError(t, err)

	var back ResultSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, rs.Equal(back))
}

func TestCloneSharesRowsNotSpine(t *testing.T) {
	rs := ResultSet{
		{"id": Integer(1)},
		{"id": Integer(2)},
	}

	clone := rs.Clone()
	clone[0] = Row{"id": Integer(99)}

	assert.Equal(t, Integer(1), rs[0]["id"], "clone must not write through to the original spine")
}
