// Package diag defines the error taxonomy shared by the preprocessor
// packages.
package diag

import (
	"errors"
	"fmt"
)

// Kind classifies why a preprocessing run failed.
type Kind int

const (
	SyntaxKind   Kind = iota // literal token could not be parsed
	TypeKind                 // value has the wrong type
	ConflictKind             // inconsistent version overrides
	ParseKind                // malformed directive or unbalanced conditional
	FatalKind                // explicit #error
)

func (k Kind) String() string {
	switch k {
	case SyntaxKind:
		return "syntax error"
	case TypeKind:
		return "type error"
	case ConflictKind:
		return "conflict"
	case ParseKind:
		return "parse error"
	case FatalKind:
		return "fatal error"
	default:
		return "unknown error"
	}
}

// Error is the error type returned by every stage of a run.
// Line is the 1-based source line, or 0 when unknown.
type Error struct {
	Kind Kind
	Msg  string
	Line int
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s - line %d", msg, e.Line)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates an Error of the given kind with no line attached.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind that wraps cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// AtLine attaches a source line to err. An *Error that already carries a
// line keeps it; any other error becomes a ParseKind error at that line.
func AtLine(err error, line int) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		if de.Line > 0 {
			return err
		}
		cp := *de
		cp.Line = line
		return &cp
	}
	return &Error{Kind: ParseKind, Msg: err.Error(), Line: line}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// LineOf reports the source line carried by err, or 0.
func LineOf(err error) int {
	var de *Error
	if errors.As(err, &de) {
		return de.Line
	}
	return 0
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
