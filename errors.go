package notes

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so the HTTP boundary can decide how to report it.
type Kind uint8

const (
	KindInternal Kind = iota
	KindAuthentication
	KindValidation
	KindNotFound
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "internal"
	}
}

// Error is a failure tagged with its Kind. Msg is the caller-visible text.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind, so the sentinels
// below match every error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	// ErrUnauthenticated is returned when the caller has no resolvable identity
	ErrUnauthenticated = &Error{Kind: KindAuthentication, Msg: "unauthenticated"}
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = &Error{Kind: KindValidation, Msg: "invalid input"}
	// ErrNotFound is returned when a note is not found
	ErrNotFound = &Error{Kind: KindNotFound, Msg: "not found"}
	// ErrStorage is returned when the storage backend fails
	ErrStorage = &Error{Kind: KindStorage, Msg: "storage failure"}
)

// Unauthenticated returns an authentication failure with the given message.
func Unauthenticated(msg string) error {
	return &Error{Kind: KindAuthentication, Msg: msg}
}

// Invalid returns a validation failure with the given message.
func Invalid(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

// NotFound returns a not-found failure with the given message.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// StorageFailure wraps a backend error. Errors that already carry a Kind are
// returned unchanged so a backend can report ErrNotFound through it.
func StorageFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return err
	}
	return &Error{Kind: KindStorage, Msg: op, Err: err}
}

// KindOf returns the Kind of err, or KindInternal for untagged errors.
func KindOf(err error) Kind {
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}
	return KindInternal
}

// Message returns the caller-visible message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Error()
	}
	return fmt.Sprint(err)
}
