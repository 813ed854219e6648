// Package dberr defines the tagged error taxonomy shared by every layer of
// the relation manager: the slotted page, the heap file, the catalog, and
// the executor all raise errors through the same Kind-tagged type so a
// caller can branch on failure class with errors.Is/errors.As instead of
// parsing messages.
package dberr

import (
	"errors"
	"fmt"
)

// Kind is a closed taxonomy of failure classes. See spec §7.
type Kind string

const (
	NoRoom                Kind = "NoRoom"
	NotFound              Kind = "NotFound"
	MissingColumn         Kind = "MissingColumn"
	UnknownColumn         Kind = "UnknownColumn"
	RowTooBig             Kind = "RowTooBig"
	TextTooLong           Kind = "TextTooLong"
	RelationError         Kind = "RelationError"
	CannotDropSchemaTable Kind = "CannotDropSchemaTable"
	NotImplemented        Kind = "NotImplemented"
	ExecError             Kind = "ExecError"
)

// Error is the single tagged error type used across the module.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // optional wrapped cause
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, dberr.ErrNoRoom) style matching work by comparing
// Kind whenever the target is itself an *Error; the target's message and
// cause are not compared.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New constructs an *Error of the given kind with no wrapped cause.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap constructs an *Error of the given kind, wrapping cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Sentinel values for errors.Is comparisons against a bare kind, e.g.
// errors.Is(err, dberr.ErrNoRoom).
var (
	ErrNoRoom                = &Error{Kind: NoRoom}
	ErrNotFound              = &Error{Kind: NotFound}
	ErrCannotDropSchemaTable = &Error{Kind: CannotDropSchemaTable}
)

// KindOf returns the Kind of err if it is (or wraps) a *Error, and ok=false
// otherwise.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
