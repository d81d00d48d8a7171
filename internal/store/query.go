package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kndwin/evolu/internal/row"
)

// Select executes a query and materializes the full result as a snapshot.
// Row order is whatever the query produces; callers who diff consecutive
// snapshots must use a deterministic ORDER BY, since the patch engine
// compares positionally.
func (s *Store) Select(ctx context.Context, query string, params ...row.Value) (row.ResultSet, error) {
	args, err := toDriverArgs(params)
	if err != nil {
		return nil, fmt.Errorf("bind params: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	result := row.ResultSet{}
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// Exec runs a statement that returns no rows and reports affected rows.
func (s *Store) Exec(ctx context.Context, stmt string, params ...row.Value) (int64, error) {
	args, err := toDriverArgs(params)
	if err != nil {
		return 0, fmt.Errorf("bind params: %w", err)
	}

	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("execute statement: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// scanRow scans the current SQL row into a row.Row keyed by column name.
func scanRow(rows *sql.Rows) (row.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("get columns: %w", err)
	}

	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}

	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, err
	}

	r := make(row.Row, len(columns))
	for i, name := range columns {
		v, err := driverToValue(values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		r[name] = v
	}
	return r, nil
}

// driverToValue converts a value scanned from database/sql to a row.Value.
func driverToValue(v any) (row.Value, error) {
	switch val := v.(type) {
	case nil:
		return row.Null{}, nil
	case int64:
		return row.Integer(val), nil
	case float64:
		return row.Real(val), nil
	case string:
		return row.Text(val), nil
	case []byte:
		// The driver reuses its buffer between rows; copy before keeping.
		b := make([]byte, len(val))
		copy(b, val)
		return row.Blob(b), nil
	case bool:
		// SQLite has no boolean storage class, but a driver may surface one.
		if val {
			return row.Integer(1), nil
		}
		return row.Integer(0), nil
	default:
		return nil, fmt.Errorf("unsupported SQL type: %T", v)
	}
}

// toDriverArgs converts row.Values to Go native types for SQL parameters.
func toDriverArgs(params []row.Value) ([]any, error) {
	if len(params) == 0 {
		return nil, nil
	}
	args := make([]any, len(params))
	for i, p := range params {
		a, err := valueToDriver(p)
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		args[i] = a
	}
	return args, nil
}

func valueToDriver(v row.Value) (any, error) {
	switch val := v.(type) {
	case row.Null:
		return nil, nil
	case row.Integer:
		return int64(val), nil
	case row.Real:
		return float64(val), nil
	case row.Text:
		return string(val), nil
	case row.Blob:
		return []byte(val), nil
	default:
		return nil, fmt.Errorf("unsupported row.Value type for SQL parameter: %T", v)
	}
}
