package xerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so callers can map it to a response.
type Kind string

const (
	KindNotFound          Kind = "NotFound"
	KindInvalidTransition Kind = "InvalidTransition"
	KindNotConvertible    Kind = "NotConvertible"
	KindNotReversible     Kind = "NotReversible"
	KindBadRequest        Kind = "BadRequest"
	KindInvalidUser       Kind = "InvalidUser"
	KindConflict          Kind = "Conflict"
	KindInternal          Kind = "InternalError"
)

// Error is the structured error returned by services. Details carries the ids
// and values a caller needs to render an actionable message.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// With returns e with an extra detail attached.
func (e *Error) With(key string, value any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func NotFound(entity, id string) *Error {
	return New(KindNotFound, fmt.Sprintf("%s not found", entity)).With("id", id)
}

func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// Internal wraps a store or infrastructure failure.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the Kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
