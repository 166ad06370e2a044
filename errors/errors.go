// errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the CLIs can decide how to react to it.
type Kind int

const (
	KindUnknown      Kind = iota
	KindInternal          // bug or unexpected library failure
	KindValidation        // malformed user input, nothing was attempted
	KindPrecondition      // environment is not fit for a measurement
	KindUnavailable       // probe program or event source cannot be used
	KindTrial             // a benchmark trial process failed
)

func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindUnavailable:
		return "unavailable"
	case KindTrial:
		return "trial"
	default:
		return "unknown"
	}
}

// Error is an error tagged with a Kind.
type Error struct {
	Kind       Kind
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Underlying)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Underlying
}

// New returns an error of the given kind.
func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Message: msg}
}

// Errorf returns an error of the given kind with a formatted message.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags err with kind. A nil err stays nil.
func Wrap(err error, kind Kind, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Underlying: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, kind Kind, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Underlying: err}
}

// GetKind returns the outermost Kind in err's chain, or KindUnknown.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether any error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Underlying
	}
	return false
}
