// Package apperrors defines the error taxonomy shared by all services.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error so callers can map it to a response.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindNotFound
	KindProvider
	KindComputation
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindProvider:
		return "provider_error"
	case KindComputation:
		return "computation_error"
	default:
		return "unknown"
	}
}

// Error carries a kind, a human-readable message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and context to an underlying error. The cause is
// preserved and reachable through errors.Unwrap.
func Wrap(kind Kind, err error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the kind of err, or 0 when err carries no kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsInvalidInput(err error) bool { return KindOf(err) == KindInvalidInput }

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

func IsProvider(err error) bool { return KindOf(err) == KindProvider }
