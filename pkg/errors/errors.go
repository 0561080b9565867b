// Package errors augments the standard library errors with a sentinel
// type that carries an optional wrapped cause. Status packages declare
// comparable sentinels with New and chain underlying failures through
// Wrap without losing the sentinel for errors.Is checks.
package errors

import (
	stderr "errors"
)

var _ error = New("")

// New declares a sentinel error with the given message.
func New(msg string) *Error {
	return &Error{msg: msg}
}

// Error is a message plus an optional wrapped cause.
type Error struct {
	msg string
	err error
}

// Error message
func (e *Error) Error() string {
	return e.msg
}

// Unwrap the nested cause, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Wrap returns a copy of the sentinel carrying err as its cause. The
// receiver is left untouched so package-level sentinels stay safe for
// concurrent use.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err}
}

// Is matches the sentinel itself, a wrapped copy of it, or its cause.
func (e *Error) Is(target error) bool {
	if e == target || e.err == target {
		return true
	}
	if o, ok := target.(*Error); ok {
		return o.err == nil && o.msg == e.msg
	}
	return false
}

// As finds the first error in err's chain that matches target, and if so,
// sets target to that error value and returns true.
// (a shortcut to the standard lib errors.As)
func As(err error, target interface{}) bool {
	return stderr.As(err, target)
}

// Is reports whether any error in err's chain matches target
// (a shortcut to the standard lib errors.Is)
func Is(err, target error) bool {
	return stderr.Is(err, target)
}
