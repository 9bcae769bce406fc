package lang

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Kind classifies an [Error] by the stage that detected it.
type Kind int

const (
	// KindUnknown is reported for errors not raised by this package.
	KindUnknown Kind = iota
	// KindStructure identifies malformed tag syntax.
	KindStructure
	// KindDeclaration identifies malformed argument declarations.
	KindDeclaration
	// KindShape identifies malformed expressions: unknown operators,
	// operand arity or source violations, bad literals and references.
	KindShape
	// KindCall identifies invalid function selectors or argument vectors.
	KindCall
	// KindInput identifies failures obtaining the source text.
	KindInput
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindStructure:
		return "structure"
	case KindDeclaration:
		return "declaration"
	case KindShape:
		return "shape"
	case KindCall:
		return "call"
	case KindInput:
		return "input"
	default:
		return "unknown"
	}
}

// Predefined errors (sentinel values).
var (
	ErrReadInput = newError(KindInput, "failed to read input")

	ErrStructure = newError(KindStructure, "malformed markup")

	ErrMissingArgList   = newError(KindDeclaration, "missing argument list")
	ErrEmptyArgList     = newError(KindDeclaration, "empty argument list")
	ErrInvalidArgDecl   = newError(KindDeclaration, "invalid argument declaration")
	ErrUnknownType      = newError(KindDeclaration, "unknown argument type")
	ErrDuplicateArgName = newError(KindDeclaration, "duplicate argument name")

	ErrUnknownOperator  = newError(KindShape, "unrecognized operator")
	ErrArity            = newError(KindShape, "operand arity mismatch")
	ErrUnknownAttribute = newError(KindShape, "unrecognized attribute")
	ErrInvalidLiteral   = newError(KindShape, "invalid literal")
	ErrExtraneousData   = newError(KindShape, "extraneous data")
	ErrArgReference     = newError(KindShape, "invalid argument reference")
	ErrArgIndex         = newError(KindShape, "argument index out of range")
	ErrUnknownArgName   = newError(KindShape, "unknown argument name")
	ErrLogBase          = newError(KindShape, "invalid logarithm base")
	ErrMissingRoot      = newError(KindShape, "missing expression")
	ErrMultipleRoots    = newError(KindShape, "multiple expressions")
	ErrUnexpectedTag    = newError(KindShape, "unexpected element")
	ErrDuplicateFunc    = newError(KindShape, "duplicate function name")
	ErrMaxDepthExceeded = newError(KindShape, "maximum expression depth exceeded")

	ErrFuncIndex       = newError(KindCall, "function index out of range")
	ErrFuncName        = newError(KindCall, "unknown function")
	ErrAmbiguousCall   = newError(KindCall, "function selector required")
	ErrArgCount        = newError(KindCall, "insufficient arguments")
	ErrArgTypeMismatch = newError(KindCall, "argument type mismatch")
	ErrInvalidArgument = newError(KindCall, "invalid argument value")
	ErrNoFunctions     = newError(KindCall, "no functions defined")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
//
// Errors derived from one of the package's sentinel values with
// [Error.With], [Error.Wrap] or [Error.Wrapf] still satisfy [errors.Is]
// against that sentinel and report the same [Kind].
type Error struct {
	kind  Kind
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
	base  *Error      // Sentinel this error was derived from
}

func newError(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// NewError creates a new Error with a message and [KindUnknown].
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// KindOf returns the [Kind] of the first [*Error] in err's chain, or
// [KindUnknown] if there is none.
func KindOf(err error) Kind {
	var ee *Error
	if errors.As(err, &ee) {
		return ee.kind
	}

	return KindUnknown
}

// Kind returns the classification of the error.
func (e *Error) Kind() Kind { return e.kind }

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

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

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+3)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.kind != KindUnknown {
		attrs = append(attrs, slog.String("kind", e.kind.String()))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
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

func (e *Error) derive() *Error {
	return &Error{
		kind:  e.kind,
		msg:   e.msg,
		err:   e.err,
		attrs: e.attrs, // Share attrs
		base:  e.root(),
	}
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}
