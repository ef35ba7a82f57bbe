package service

import (
	"errors"
	"fmt"
)

// Kind classifies service failures. The HTTP layer maps each kind to a status code.
type Kind int

const (
	KindInternal Kind = iota
	KindMissingHeader
	KindUserNotFound
	KindInvalidIdentifier
	KindTodoNotFound
	KindDuplicateUsername
	KindAlreadyPro
	KindQuotaExceeded
	KindInvalidInput
)

var kindNames = map[Kind]string{
	KindInternal:          "internal",
	KindMissingHeader:     "missing header",
	KindUserNotFound:      "user not found",
	KindInvalidIdentifier: "invalid identifier",
	KindTodoNotFound:      "todo not found",
	KindDuplicateUsername: "duplicate username",
	KindAlreadyPro:        "already pro",
	KindQuotaExceeded:     "quota exceeded",
	KindInvalidInput:      "invalid input",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by every Service method. Message is safe to show to
// clients; Err carries the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func internal(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: fmt.Errorf("%s: %w", op, err)}
}
