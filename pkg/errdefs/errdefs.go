// Package errdefs defines the error kinds shared by every reactorcad
// package, plus the advisory Warning type used for non-fatal diagnostics.
//
// Errors are always returned, never recovered: callers inspect them with
// KindOf or errors.As and decide what to do (the CLI maps kinds to exit
// codes).
package errdefs

import (
	"errors"
	"fmt"
)

// Kind classifies an error.
type Kind int

const (
	KindUnknown          Kind = iota
	KindInvalidParameter      // numeric out of range, unknown enum, mismatched lengths
	KindInvalidGeometry       // self-intersection, too few points, malformed runs
	KindComposition           // cycles, bad rotation angle, unresolved operands
	KindWorkplane             // workplane / path_workplane mismatch
	KindKernel                // the geometry kernel failed
	KindExport                // duplicate or missing names at export
	KindIO                    // filesystem failure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidParameter:
		return "invalid parameter"
	case KindInvalidGeometry:
		return "invalid geometry"
	case KindComposition:
		return "composition error"
	case KindWorkplane:
		return "workplane error"
	case KindKernel:
		return "kernel failure"
	case KindExport:
		return "export error"
	case KindIO:
		return "i/o failure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is the concrete error type carried through reactorcad.
type Error struct {
	Kind    Kind
	Op      string // operation, e.g. "shape.Solid" or "reactor.ExportSTP"
	Subject string // shape or layer name, may be empty
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Subject != "" {
		msg += fmt.Sprintf(" (%s)", e.Subject)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an *Error of the given kind.
func New(kind Kind, op, subject string, err error) *Error {
	return &Error{Kind: kind, Op: op, Subject: subject, Err: err}
}

// Invalidf returns a KindInvalidParameter error.
func Invalidf(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidParameter, Op: op, Err: fmt.Errorf(format, args...)}
}

// Geometryf returns a KindInvalidGeometry error.
func Geometryf(op, format string, args ...any) error {
	return &Error{Kind: KindInvalidGeometry, Op: op, Err: fmt.Errorf(format, args...)}
}

// Compositionf returns a KindComposition error.
func Compositionf(op, format string, args ...any) error {
	return &Error{Kind: KindComposition, Op: op, Err: fmt.Errorf(format, args...)}
}

// Workplanef returns a KindWorkplane error.
func Workplanef(op, format string, args ...any) error {
	return &Error{Kind: KindWorkplane, Op: op, Err: fmt.Errorf(format, args...)}
}

// Exportf returns a KindExport error.
func Exportf(op, format string, args ...any) error {
	return &Error{Kind: KindExport, Op: op, Err: fmt.Errorf(format, args...)}
}

// Kernel wraps a kernel failure with the offending shape's name.
func Kernel(op, subject string, err error) error {
	return &Error{Kind: KindKernel, Op: op, Subject: subject, Err: err}
}

// IO wraps a filesystem failure.
func IO(op, subject string, err error) error {
	return &Error{Kind: KindIO, Op: op, Subject: subject, Err: err}
}

// WithSubject returns err with its subject set when err is an *Error
// without one. Other errors are returned unchanged.
func WithSubject(err error, subject string) error {
	var e *Error
	if errors.As(err, &e) && e.Subject == "" {
		cp := *e
		cp.Subject = subject
		return &cp
	}
	return err
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Warning is an advisory, non-blocking diagnostic.
type Warning struct {
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Subject == "" {
		return w.Message
	}
	return w.Subject + ": " + w.Message
}
