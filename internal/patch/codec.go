package patch

import (
	"encoding/json"
	"fmt"

	"github.com/kndwin/evolu/internal/row"
)

// Wire format: a patch sequence is a JSON array of objects discriminated by
// an "op" field. The transport carrying it only has to preserve order and
// the tagged case of each element.
//
//	[{"op":"replaceAll","rows":[...]},
//	 {"op":"replaceAt","index":1,"row":{...}},
//	 {"op":"purge"}]
const (
	opReplaceAll = "replaceAll"
	opReplaceAt  = "replaceAt"
	opPurge      = "purge"
)

type wirePatch struct {
	Op    string         `json:"op"`
	Rows  *row.ResultSet `json:"rows,omitempty"`
	Index *int           `json:"index,omitempty"`
	Row   row.Row        `json:"row,omitempty"`
}

// EncodeSequence encodes a patch sequence for transport. The empty sequence
// encodes as [] so that "no change" survives the round trip.
func EncodeSequence(patches []Patch) ([]byte, error) {
	wire := make([]wirePatch, len(patches))
	for i, p := range patches {
		switch pt := p.(type) {
		case ReplaceAll:
			rows := pt.Rows
			if rows == nil {
				rows = row.ResultSet{}
			}
			wire[i] = wirePatch{Op: opReplaceAll, Rows: &rows}
		case ReplaceAt:
			idx := pt.Index
			wire[i] = wirePatch{Op: opReplaceAt, Index: &idx, Row: pt.Row}
		case Purge:
			wire[i] = wirePatch{Op: opPurge}
		default:
			return nil, fmt.Errorf("unknown patch type: %T", p)
		}
	}
	return json.Marshal(wire)
}

// DecodeSequence decodes a patch sequence produced by EncodeSequence.
// Order and tagged cases are preserved exactly.
func DecodeSequence(data []byte) ([]Patch, error) {
	var wire []wirePatch
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}

	patches := make([]Patch, 0, len(wire))
	for i, w := range wire {
		switch w.Op {
		case opReplaceAll:
			if w.Rows == nil {
				return nil, fmt.Errorf("patch[%d]: %s requires rows", i, opReplaceAll)
			}
			patches = append(patches, ReplaceAll{Rows: *w.Rows})
		case opReplaceAt:
			if w.Index == nil {
				return nil, fmt.Errorf("patch[%d]: %s requires index", i, opReplaceAt)
			}
			if *w.Index < 0 {
				return nil, fmt.Errorf("patch[%d]: negative index %d", i, *w.Index)
			}
			if w.Row == nil {
				return nil, fmt.Errorf("patch[%d]: %s requires row", i, opReplaceAt)
			}
			patches = append(patches, ReplaceAt{Index: *w.Index, Row: w.Row})
		case opPurge:
			patches = append(patches, Purge{})
		default:
			return nil, fmt.Errorf("patch[%d]: unknown op %q", i, w.Op)
		}
	}
	return patches, nil
}
