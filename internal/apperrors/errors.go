package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error into one of the categories the API reports to
// clients. Every failure a handler can surface maps to exactly one kind.
type Kind string

const (
	KindInvalidAmount     Kind = "invalid_amount"
	KindInvalidCardNumber Kind = "invalid_card_number"
	KindValidation        Kind = "validation_error"
	KindConflict          Kind = "conflict"
	KindNotFound          Kind = "not_found"
	KindOperationRejected Kind = "operation_rejected"
	KindBusinessRule      Kind = "business_rule"
	KindUnauthorized      Kind = "unauthorized"
	KindForbidden         Kind = "forbidden"
	KindInternal          Kind = "internal"
)

// Error is a kinded application error. The message is safe to return to the
// client; anything sensitive stays in the wrapped cause.
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

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the kind of err, or KindInternal if err carries none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err (or anything it wraps) has the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
