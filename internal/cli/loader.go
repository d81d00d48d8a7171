package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kndwin/evolu/internal/patch"
	"github.com/kndwin/evolu/internal/row"
)

// UnknownPath is the sentinel path meaning "no held result": commands that
// take a result file accept it where a query has never produced a snapshot.
const UnknownPath = "-"

// LoadHeldResult reads a result-set JSON file into a held result.
// The path "-" yields Unknown; any real file must contain a JSON array of
// row objects (an empty array is a known empty result).
func LoadHeldResult(path string) (patch.HeldResult, error) {
	if path == UnknownPath {
		return patch.Unknown(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return patch.Unknown(), WrapExitError(ExitCommandError, fmt.Sprintf("result file %s", path), err)
	}

	var rows row.ResultSet
	if err := json.Unmarshal(data, &rows); err != nil {
		return patch.Unknown(), WrapExitError(ExitCommandError, fmt.Sprintf("result file %s is not a row array", path), err)
	}
	if rows == nil {
		rows = row.ResultSet{}
	}
	return patch.Known(rows), nil
}

// LoadResultSet reads a result-set JSON file that must be a known result.
func LoadResultSet(path string) (row.ResultSet, error) {
	held, err := LoadHeldResult(path)
	if err != nil {
		return nil, err
	}
	rows, known := held.Rows()
	if !known {
		return nil, NewExitError(ExitCommandError, "a known result is required, not -")
	}
	return rows, nil
}

// LoadPatchSequence reads a patch-sequence JSON file.
func LoadPatchSequence(path string) ([]patch.Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("patch file %s", path), err)
	}
	patches, err := patch.DecodeSequence(data)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("patch file %s", path), err)
	}
	return patches, nil
}
