package queryset

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/kndwin/evolu/internal/row"
)

// QueryDef is one compiled watched-query definition.
type QueryDef struct {
	// Name uniquely identifies the query within its set.
	Name string

	// SQL is the statement executed on every refresh. It must produce a
	// deterministic row order (see package doc).
	SQL string

	// Params are literal bind parameters, in positional order.
	Params []row.Value

	// RefreshMillis overrides the watcher's default polling cadence when
	// greater than zero.
	RefreshMillis int64
}

// CompileError reports a problem in a query-set definition.
type CompileError struct {
	Query   string
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	field := e.Field
	if e.Query != "" {
		field = "queries." + e.Query + "." + e.Field
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			field, e.Message)
	}
	return fmt.Sprintf("%s: %s", field, e.Message)
}

// LoadFile reads and compiles a CUE query-set file.
func LoadFile(path string) ([]QueryDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query set: %w", err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	return Compile(v)
}

// Compile parses a CUE value holding a `queries` struct into query
// definitions, in declaration order.
func Compile(v cue.Value) ([]QueryDef, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	queriesVal := v.LookupPath(cue.ParsePath("queries"))
	if !queriesVal.Exists() {
		return nil, &CompileError{
			Field:   "queries",
			Message: "queries struct is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := queriesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var defs []QueryDef
	seen := map[string]bool{}
	for iter.Next() {
		def, err := compileQuery(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		if seen[def.Name] {
			return nil, &CompileError{
				Query:   def.Name,
				Field:   "name",
				Message: "duplicate query name",
				Pos:     iter.Value().Pos(),
			}
		}
		seen[def.Name] = true
		defs = append(defs, def)
	}

	if len(defs) == 0 {
		return nil, &CompileError{
			Field:   "queries",
			Message: "at least one query is required",
			Pos:     queriesVal.Pos(),
		}
	}
	return defs, nil
}

func compileQuery(name string, v cue.Value) (QueryDef, error) {
	def := QueryDef{Name: name}

	sqlVal := v.LookupPath(cue.ParsePath("sql"))
	if !sqlVal.Exists() {
		return def, &CompileError{
			Query:   name,
			Field:   "sql",
			Message: "sql is required",
			Pos:     v.Pos(),
		}
	}
	sql, err := sqlVal.String()
	if err != nil {
		return def, formatCUEError(err)
	}
	if sql == "" {
		return def, &CompileError{
			Query:   name,
			Field:   "sql",
			Message: "sql must be non-empty",
			Pos:     sqlVal.Pos(),
		}
	}
	def.SQL = sql

	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if paramsVal.Exists() {
		list, err := paramsVal.List()
		if err != nil {
			return def, formatCUEError(err)
		}
		for i := 0; list.Next(); i++ {
			p, err := compileParam(name, i, list.Value())
			if err != nil {
				return def, err
			}
			def.Params = append(def.Params, p)
		}
	}

	refreshVal := v.LookupPath(cue.ParsePath("refresh_ms"))
	if refreshVal.Exists() {
		ms, err := refreshVal.Int64()
		if err != nil {
			return def, formatCUEError(err)
		}
		if ms < 0 {
			return def, &CompileError{
				Query:   name,
				Field:   "refresh_ms",
				Message: "refresh_ms must be non-negative",
				Pos:     refreshVal.Pos(),
			}
		}
		def.RefreshMillis = ms
	}

	return def, nil
}

// compileParam converts a CUE scalar to a row.Value bind parameter.
func compileParam(query string, index int, v cue.Value) (row.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return row.Null{}, nil
	case cue.IntKind:
		n, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return row.Integer(n), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return row.Real(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return row.Text(s), nil
	case cue.BytesKind:
		b, err := v.Bytes()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return row.Blob(b), nil
	default:
		return nil, &CompileError{
			Query:   query,
			Field:   fmt.Sprintf("params[%d]", index),
			Message: fmt.Sprintf("unsupported parameter kind %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
