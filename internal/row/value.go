package row

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Value is a sealed interface representing a single SQLite scalar.
// Only Null, Integer, Real, Text, and Blob implement it.
type Value interface {
	value() // Sealed - only these types implement it
}

// Null represents SQL NULL.
// Using an explicit type ensures all Values satisfy the sealed interface;
// a Go nil is never a valid Value.
type Null struct{}

func (Null) value() {}

// Integer represents an INTEGER value. Always int64.
type Integer int64

func (Integer) value() {}

// Real represents a REAL value.
type Real float64

func (Real) value() {}

// Text represents a TEXT value.
type Text string

func (Text) value() {}

// Blob represents a BLOB value. Treated as an immutable snapshot;
// callers must not modify the backing slice after constructing one.
type Blob []byte

func (Blob) value() {}

// Equal reports strict equality of two values. Values of different storage
// classes are never equal - Integer(1) != Real(1) and Integer(1) != Text("1").
// Blobs compare byte-wise.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Integer:
		bv, ok := b.(Integer)
		return ok && av == bv
	case Real:
		bv, ok := b.(Real)
		return ok && av == bv
	case Text:
		bv, ok := b.(Text)
		return ok && av == bv
	case Blob:
		bv, ok := b.(Blob)
		return ok && bytes.Equal(av, bv)
	default:
		return false
	}
}

// blobTag is the single JSON object key used to encode a Blob.
// Row values are scalars, so the only object form on the wire is this tag.
const blobTag = "$blob"

// MarshalValue encodes a Value as JSON.
// Null, Integer, Real, and Text map to their natural JSON forms;
// Blob is encoded as {"$blob": "<base64>"} to survive the round trip.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case Null:
		return []byte("null"), nil
	case Integer:
		return json.Marshal(int64(val))
	case Real:
		return json.Marshal(float64(val))
	case Text:
		return json.Marshal(string(val))
	case Blob:
		return json.Marshal(map[string]string{
			blobTag: base64.StdEncoding.EncodeToString(val),
		})
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// UnmarshalValue decodes a JSON scalar into a Value.
// Numbers without a fraction or exponent decode as Integer, all others as
// Real, so an Integer/Real distinction survives encode/decode.
func UnmarshalValue(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case 'n':
		return Null{}, nil

	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return Text(s), nil

	case '{':
		var obj map[string]string
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, err
		}
		enc, ok := obj[blobTag]
		if !ok || len(obj) != 1 {
			return nil, fmt.Errorf("object value must be a %q tag", blobTag)
		}
		raw, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", blobTag, err)
		}
		return Blob(raw), nil

	case 't', 'f', '[':
		return nil, fmt.Errorf("unsupported JSON value: %s", string(data))

	default:
		// Must be a number. Distinguish Integer from Real by syntax,
		// not by magnitude: "1.0" is Real even though it fits int64.
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		s := string(n)
		if strings.ContainsAny(s, ".eE") {
			f, err := n.Float64()
			if err != nil {
				return nil, err
			}
			return Real(f), nil
		}
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return Integer(i), nil
	}
}
