package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kndwin/evolu/internal/row"
)

func seedTodos(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Exec(ctx, `CREATE TABLE todos (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		weight REAL,
		attachment BLOB,
		done INTEGER NOT NULL DEFAULT 0
	)`)
	require.NoError(t, err)

	_, err = s.Exec(ctx,
		`INSERT INTO todos (id, title, weight, attachment, done) VALUES (?, ?, ?, ?, ?)`,
		row.Integer(1), row.Text("buy milk"), row.Real(0.5), row.Blob{0xca, 0xfe}, row.Integer(0))
	require.NoError(t, err)

	_, err = s.Exec(ctx,
		`INSERT INTO todos (id, title, weight, attachment, done) VALUES (?, ?, ?, ?, ?)`,
		row.Integer(2), row.Text("walk dog"), row.Null{}, row.Null{}, row.Integer(1))
	require.NoError(t, err)
}

func TestSelectScansStorageClasses(t *testing.T) {
	s := openTestStore(t)
	seedTodos(t, s)

	rs, err := s.Select(context.Background(),
		`SELECT id, title, weight, attachment, done FROM todos ORDER BY id`)
	require.NoError(t, err)
	require.Len(t, rs, 2)

	assert.True(t, rs[0].Equal(row.Row{
		"id":         row.Integer(1),
		"title":      row.Text("buy milk"),
		"weight":     row.Real(0.5),
		"attachment": row.Blob{0xca, 0xfe},
		"done":       row.Integer(0),
	}))
	assert.True(t, rs[1].Equal(row.Row{
		"id":         row.Integer(2),
		"title":      row.Text("walk dog"),
		"weight":     row.Null{},
		"attachment": row.Null{},
		"done":       row.Integer(1),
	}))
}

func TestSelectEmptyResultIsKnownEmpty(t *testing.T) {
	s := openTestStore(t)
	seedTodos(t, s)

	rs, err := s.Select(context.Background(), `SELECT id FROM todos WHERE id > 100`)
	require.NoError(t, err)

	// An empty result is a concrete, known state - never nil.
	assert.NotNil(t, rs)
	assert.Len(t, rs, 0)
}

func TestSelectWithParams(t *testing.T) {
	s := openTestStore(t)
	seedTodos(t, s)

	rs, err := s.Select(context.Background(),
		`SELECT title FROM todos WHERE done = ? ORDER BY id`, row.Integer(1))
	require.NoError(t, err)

	require.Len(t, rs, 1)
	assert.Equal(t, row.Text("walk dog"), rs[0]["title"])
}

func TestSelectBadSQL(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Select(context.Background(), `SELECT FROM nowhere`)
	assert.Error(t, err)
}

func TestExecReportsAffectedRows(t *testing.T) {
	s := openTestStore(t)
	seedTodos(t, s)

	n, err := s.Exec(context.Background(), `UPDATE todos SET done = 1`)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSelectSnapshotsAreIndependent(t *testing.T) {
	s := openTestStore(t)
	seedTodos(t, s)
	ctx := context.Background()

	before, err := s.Select(ctx, `SELECT id, done FROM todos ORDER BY id`)
	require.NoError(t, err)

	_, err = s.Exec(ctx, `UPDATE todos SET done = 1 WHERE id = 1`)
	require.NoError(t, err)

	after, err := s.Select(ctx, `SELECT id, done FROM todos ORDER BY id`)
	require.NoError(t, err)

	// The earlier snapshot is unaffected by the later write.
	assert.Equal(t, row.Integer(0), before[0]["done"])
	assert.Equal(t, row.Integer(1), after[0]["done"])
}
