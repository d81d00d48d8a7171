package live

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while refreshing live queries.
//
// Runtime errors include:
//   - Query failed: the store rejected or could not execute the SQL
//   - Patch rejected: applying the engine's own patches violated the
//     patch contract (indicates a bug, not a user error)
//   - Unknown query: a refresh or subscribe referenced an undefined query
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Query identifies the affected query definition.
	Query string

	// Err is the underlying cause, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeQueryFailed indicates the store could not execute the query.
	ErrCodeQueryFailed RuntimeErrorCode = "QUERY_FAILED"

	// ErrCodePatchRejected indicates the applier refused a patch sequence.
	ErrCodePatchRejected RuntimeErrorCode = "PATCH_REJECTED"

	// ErrCodeUnknownQuery indicates a reference to an undefined query name.
	ErrCodeUnknownQuery RuntimeErrorCode = "UNKNOWN_QUERY"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("%s: %s (query=%s)", e.Code, e.Message, e.Query)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsUnknownQuery returns true if the error references an undefined query.
// Uses errors.As to handle wrapped errors.
func IsUnknownQuery(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeUnknownQuery
	}
	return false
}

func newQueryFailedError(query string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeQueryFailed,
		Message: "query execution failed",
		Query:   query,
		Err:     err,
	}
}

func newPatchRejectedError(query string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodePatchRejected,
		Message: "applying diff output failed",
		Query:   query,
		Err:     err,
	}
}

func newUnknownQueryError(query string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownQuery,
		Message: "query is not defined in the watched set",
		Query:   query,
	}
}
