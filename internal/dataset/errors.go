package dataset

import (
	"errors"
	"fmt"
)

// MalformedInputError reports a structural problem in a raw extract
// file: a missing required column, or a field that cannot be parsed
// under its expected fixed-width format. Load-time structural errors
// are fatal; the run aborts and no artifact is written.
type MalformedInputError struct {
	File   string
	Line   int
	Column string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed input in %s line %d, column %q: %s", e.File, e.Line, e.Column, e.Reason)
	}
	return fmt.Sprintf("malformed input in %s: %s", e.File, e.Reason)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// IsMalformedInput reports whether err is (or wraps) a MalformedInputError.
func IsMalformedInput(err error) bool {
	var target *MalformedInputError
	return errors.As(err, &target)
}

func newMalformedInput(file string, line int, column, reason string, err error) *MalformedInputError {
	return &MalformedInputError{File: file, Line: line, Column: column, Reason: reason, Err: err}
}
