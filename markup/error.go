package markup

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
var (
	ErrReadInput           = NewError("failed to read input")
	ErrUntaggedContent     = NewError("untagged content")
	ErrUnterminatedTag     = NewError("unterminated tag")
	ErrUnexpectedClose     = NewError("unexpected closing tag")
	ErrMismatchedTag       = NewError("mismatched closing tag")
	ErrUnterminatedQuote   = NewError("unterminated quoted value")
	ErrStrayBracket        = NewError("stray bracket in tag")
	ErrInvalidName         = NewError("invalid tag name")
	ErrInvalidAttribute    = NewError("invalid attribute")
	ErrDuplicateAttribute  = NewError("duplicate attribute")
	ErrUnterminatedDecl    = NewError("unterminated declaration")
	ErrUnterminatedComment = NewError("unterminated comment")
	ErrMaxDepthExceeded    = NewError("maximum nesting depth exceeded")
)

// Error is a structural error in tagged input.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from a sentinel with [Error.With], [Error.Wrap],
// [Error.Wrapf], or [Error.WithPosition] still match that sentinel with
// [errors.Is].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
	pos   Position
	base  *Error
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// Error implements the error interface.
//
// The message has the form "line L, column C: <msg>: <cause>", omitting
// any part that is unset.
func (e *Error) Error() string {
	part := make([]string, 0, 3)

	if e.pos.Line > 0 {
		part = append(part, e.pos.String())
	}

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.root() == t.root()
}

// Position returns the source position of the offending token, or the zero
// Position if unknown.
func (e *Error) Position() Position { return e.pos }

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+4)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	if e.pos.Line > 0 {
		attrs = append(attrs,
			slog.Int("line", e.pos.Line),
			slog.Int("column", e.pos.Column),
		)
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	d := e.derive()
	d.err = err

	return d
}

// Wrapf creates a new Error wrapping a formatted detail message.
func (e *Error) Wrapf(format string, args ...any) *Error {
	return e.Wrap(fmt.Errorf(format, args...))
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	d := e.derive()
	d.attrs = make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(d.attrs, e.attrs)
	copy(d.attrs[len(e.attrs):], attrs)

	return d
}

// WithPosition returns a copy of the error located at pos.
func (e *Error) WithPosition(pos Position) *Error {
	d := e.derive()
	d.pos = pos

	return d
}

func (e *Error) derive() *Error {
	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: e.attrs, // Share attrs
		pos:   e.pos,
		base:  e.root(),
	}
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// Position identifies a location in the source text.
// Line and Column are 1-based; Offset is a 0-based byte offset.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns the position formatted as "line L, column C".
func (p Position) String() string {
	return "line " + strconv.Itoa(p.Line) + ", column " + strconv.Itoa(p.Column)
}
