package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kndwin/evolu/internal/row"
)

func TestMustRowConversions(t *testing.T) {
	r := MustRow(map[string]any{
		"id":     1,
		"big":    int64(1 << 40),
		"weight": 0.5,
		"title":  "buy milk",
		"data":   []byte{0xde, 0xad},
		"note":   nil,
		"passed": row.Integer(7),
	})

	assert.Equal(t, row.Integer(1), r["id"])
	assert.Equal(t, row.Integer(1<<40), r["big"])
	assert.Equal(t, row.Real(0.5), r["weight"])
	assert.Equal(t, row.Text("buy milk"), r["title"])
	assert.Equal(t, row.Blob([]byte{0xde, 0xad}), r["data"])
	assert.Equal(t, row.Null{}, r["note"])
	assert.Equal(t, row.Integer(7), r["passed"])
}

func TestMustRowPanicsOnBool(t *testing.T) {
	assert.Panics(t, func() {
		MustRow(map[string]any{"done": true})
	})
}

func TestMustResult(t *testing.T) {
	rs := MustResult(
		map[string]any{"id": 1},
		map[string]any{"id": 2},
	)

	require.Len(t, rs, 2)
	assert.Equal(t, row.Integer(1), rs[0]["id"])
	assert.Equal(t, row.Integer(2), rs[1]["id"])
}
