// Package fberrors defines the engine's error kinds. Errors the engine
// raises across a package boundary are built with New, which pairs a
// Kind with the underlying cause, so callers can classify failures with
// IsKind without parsing strings.
package fberrors

import "errors"

// Kind classifies a failure for exit-code and logging purposes.
type Kind int

const (
	_ Kind = iota
	UsageError
	DriverNotFound
	DriverOpenFailed
	IncompatibleDrivers
	ResourceExhausted
	DecodeError
	ProtocolError
	Interrupted
)

func (k Kind) String() string {
	switch k {
	case UsageError:
		return "usage error"
	case DriverNotFound:
		return "driver not found"
	case DriverOpenFailed:
		return "driver open failed"
	case IncompatibleDrivers:
		return "incompatible drivers"
	case ResourceExhausted:
		return "resource exhausted"
	case DecodeError:
		return "decode error"
	case ProtocolError:
		return "protocol error"
	case Interrupted:
		return "interrupted"
	default:
		return "unknown error"
	}
}

// Error pairs a Kind with an underlying cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Op + ": " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an *Error for op/kind wrapping cause (which may be nil).
func New(op string, kind Kind, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// IsKind reports whether err, or an error it wraps, is an *Error carrying
// kind. errors.Is(err, X) cannot be used for this because Kind is not an
// error.
func IsKind(err error, kind Kind) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind == kind
	}
	return false
}
