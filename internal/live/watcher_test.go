package live

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kndwin/evolu/internal/patch"
	"github.com/kndwin/evolu/internal/queryset"
	"github.com/kndwin/evolu/internal/row"
	"github.com/kndwin/evolu/internal/store"
)

func newTestWatcher(t *testing.T) (*Watcher, *store.Store) {
	t.Helper()
	ctx := context.Background()

	s, err := store.Open(filepath.Join(t.TempDir(), "live.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.Exec(ctx, `CREATE TABLE todos (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		done INTEGER NOT NULL DEFAULT 0
	)`)
	require.NoError(t, err)
	_, err = s.Exec(ctx, `INSERT INTO todos (id, title) VALUES (1, 'buy milk'), (2, 'walk dog')`)
	require.NoError(t, err)

	defs := []queryset.QueryDef{
		{Name: "todos", SQL: "SELECT id, title, done FROM todos ORDER BY id"},
		{Name: "open", SQL: "SELECT id FROM todos WHERE done = 0 ORDER BY id"},
	}
	w := NewWatcher(s, defs, WithTokenGenerator(NewFixedGenerator("sub-1", "sub-2", "sub-3")))
	return w, s
}

func TestFirstRefreshIsFullReplacement(t *testing.T) {
	w, _ := newTestWatcher(t)

	patches, err := w.Refresh(context.Background(), "todos")
	require.NoError(t, err)

	require.Len(t, patches, 1)
	all, ok := patches[0].(patch.ReplaceAll)
	require.True(t, ok)
	assert.Len(t, all.Rows, 2)

	held, err := w.Held("todos")
	require.NoError(t, err)
	assert.True(t, held.IsKnown())
}

func TestRefreshCleanIsSilent(t *testing.T) {
	w, _ := newTestWatcher(t)
	ctx := context.Background()

	_, err := w.Refresh(ctx, "todos")
	require.NoError(t, err)

	notified := 0
	_, _, err = w.Subscribe("todos", func(Notification) { notified++ })
	require.NoError(t, err)

	patches, err := w.Refresh(ctx, "todos")
	require.NoError(t, err)

	assert.Empty(t, patches)
	assert.Zero(t, notified, "no-change refresh must not notify")
}

func TestRefreshEmitsRowPatch(t *testing.T) {
	w, s := newTestWatcher(t)
	ctx := context.Background()

	_, err := w.Refresh(ctx, "todos")
	require.NoError(t, err)

	var got Notification
	_, _, err = w.Subscribe("todos", func(n Notification) { got = n })
	require.NoError(t, err)

	_, err = s.Exec(ctx, `UPDATE todos SET done = 1 WHERE id = 2`)
	require.NoError(t, err)

	patches, err := w.Refresh(ctx, "todos")
	require.NoError(t, err)

	// One row of two mutated in place: a single point patch, not a full
	// replacement.
	require.Len(t, patches, 1)
	at, ok := patches[0].(patch.ReplaceAt)
	require.True(t, ok)
	assert.Equal(t, 1, at.Index)
	assert.Equal(t, row.Integer(1), at.Row["done"])

	assert.Equal(t, "todos", got.Query)
	rows, known := got.Result.Rows()
	require.True(t, known)
	assert.Equal(t, row.Integer(1), rows[1]["done"])
}

func TestRefreshLengthChangeReplacesAll(t *testing.T) {
	w, s := newTestWatcher(t)
	ctx := context.Background()

	_, err := w.Refresh(ctx, "todos")
	require.NoError(t, err)

	_, err = s.Exec(ctx, `INSERT INTO todos (id, title) VALUES (3, 'water plants')`)
	require.NoError(t, err)

	patches, err := w.Refresh(ctx, "todos")
	require.NoError(t, err)

	require.Len(t, patches, 1)
	all, ok := patches[0].(patch.ReplaceAll)
	require.True(t, ok)
	assert.Len(t, all.Rows, 3)
}

func TestSubscribeUnknownQuery(t *testing.T) {
	w, _ := newTestWatcher(t)

	_, _, err := w.Subscribe("nope", func(Notification) {})

	require.Error(t, err)
	assert.True(t, IsUnknownQuery(err))
}

func TestUnsubscribeLastPurges(t *testing.T) {
	w, _ := newTestWatcher(t)
	ctx := context.Background()

	_, err := w.Refresh(ctx, "todos")
	require.NoError(t, err)

	tk1, _, err := w.Subscribe("todos", func(Notification) {})
	require.NoError(t, err)
	tk2, _, err := w.Subscribe("todos", func(Notification) {})
	require.NoError(t, err)

	w.Unsubscribe(tk1)
	held, err := w.Held("todos")
	require.NoError(t, err)
	assert.True(t, held.IsKnown(), "a remaining subscriber keeps the result alive")

	w.Unsubscribe(tk2)
	held, err = w.Held("todos")
	require.NoError(t, err)
	assert.False(t, held.IsKnown(), "last unsubscribe purges to Unknown")

	// After a purge the next refresh is a full replacement again.
	patches, err := w.Refresh(ctx, "todos")
	require.NoError(t, err)
	require.Len(t, patches, 1)
	_, ok := patches[0].(patch.ReplaceAll)
	assert.True(t, ok)
}

func TestUnsubscribeUnknownTokenIsNoOp(t *testing.T) {
	w, _ := newTestWatcher(t)
	w.Unsubscribe("never-issued")
}

func TestMarkDirtyValidatesQuery(t *testing.T) {
	w, _ := newTestWatcher(t)

	assert.NoError(t, w.MarkDirty("todos"))
	assert.True(t, IsUnknownQuery(w.MarkDirty("nope")))
}

func TestRefreshAllSweepsInDefinitionOrder(t *testing.T) {
	w, _ := newTestWatcher(t)

	require.NoError(t, w.RefreshAll(context.Background()))

	for _, name := range []string{"todos", "open"} {
		held, err := w.Held(name)
		require.NoError(t, err)
		assert.True(t, held.IsKnown(), "query %s", name)
	}
}

func TestRefreshQueryFailure(t *testing.T) {
	w, s := newTestWatcher(t)
	ctx := context.Background()

	_, err := w.Refresh(ctx, "todos")
	require.NoError(t, err)

	_, err = s.Exec(ctx, `DROP TABLE todos`)
	require.NoError(t, err)

	_, err = w.Refresh(ctx, "todos")
	require.Error(t, err)

	var re *RuntimeError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeQueryFailed, re.Code)

	// A failed refresh leaves the held result untouched.
	held, err := w.Held("todos")
	require.NoError(t, err)
	assert.True(t, held.IsKnown())
}
