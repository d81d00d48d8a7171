package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kndwin/evolu/internal/patch"
	"github.com/kndwin/evolu/internal/testutil"
)

func TestLoadHeldResultUnknown(t *testing.T) {
	held, err := LoadHeldResult("-")
	require.NoError(t, err)
	assert.False(t, held.IsKnown())
}

func TestLoadHeldResultRows(t *testing.T) {
	path := writeFile(t, "rows.json", `[{"id":1,"title":"buy milk"},{"id":2,"title":"walk dog"}]`)

	held, err := LoadHeldResult(path)
	require.NoError(t, err)

	rows, known := held.Rows()
	require.True(t, known)
	want := testutil.MustResult(
		map[string]any{"id": 1, "title": "buy milk"},
		map[string]any{"id": 2, "title": "walk dog"},
	)
	assert.True(t, rows.Equal(want))
}

func TestLoadHeldResultEmptyArray(t *testing.T) {
	path := writeFile(t, "empty.json", `[]`)

	held, err := LoadHeldResult(path)
	require.NoError(t, err)

	rows, known := held.Rows()
	assert.True(t, known)
	assert.Empty(t, rows)
}

func TestLoadHeldResultErrors(t *testing.T) {
	_, err := LoadHeldResult(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	path := writeFile(t, "bad.json", `{"not":"an array"}`)
	_, err = LoadHeldResult(path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLoadResultSetRejectsUnknown(t *testing.T) {
	_, err := LoadResultSet("-")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestLoadPatchSequence(t *testing.T) {
	path := writeFile(t, "patches.json",
		`[{"op":"replaceAt","index":0,"row":{"id":1,"done":1}},{"op":"purge"}]`)

	patches, err := LoadPatchSequence(path)
	require.NoError(t, err)
	require.Len(t, patches, 2)

	ra, ok := patches[0].(patch.ReplaceAt)
	require.True(t, ok)
	assert.Equal(t, 0, ra.Index)
	_, ok = patches[1].(patch.Purge)
	assert.True(t, ok)
}

func TestLoadPatchSequenceErrors(t *testing.T) {
	path := writeFile(t, "bad.json", `[{"op":"teleport"}]`)
	_, err := LoadPatchSequence(path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
