package patch

import (
	"errors"
	"fmt"
)

// ApplyError reports a contract violation detected while folding a patch
// sequence over a held result.
//
// Patches from one diff must be applied atomically, in order, exactly once,
// to the exact snapshot they were computed against. An index patch whose
// target is out of range means that discipline was broken somewhere, and
// silently corrupting the held result would hide the bug; the applier
// reports it instead.
type ApplyError struct {
	// Code identifies the error category.
	Code ApplyErrorCode

	// Index is the offending patch index into the held result.
	Index int

	// Length is the held result's length at the time of application.
	Length int
}

// ApplyErrorCode categorizes apply errors.
type ApplyErrorCode string

const (
	// ErrCodeIndexOutOfRange indicates a ReplaceAt whose index does not fit
	// the held result it was applied to.
	ErrCodeIndexOutOfRange ApplyErrorCode = "INDEX_OUT_OF_RANGE"
)

// Error implements the error interface.
func (e *ApplyError) Error() string {
	return fmt.Sprintf("%s: replaceAt index %d against result of length %d", e.Code, e.Index, e.Length)
}

// IsIndexOutOfRange returns true if the error is an out-of-range ReplaceAt.
// Uses errors.As to handle wrapped errors.
func IsIndexOutOfRange(err error) bool {
	var ae *ApplyError
	if errors.As(err, &ae) {
		return ae.Code == ErrCodeIndexOutOfRange
	}
	return false
}

func newOutOfRangeError(index, length int) *ApplyError {
	return &ApplyError{
		Code:   ErrCodeIndexOutOfRange,
		Index:  index,
		Length: length,
	}
}
