package domain

import "errors"

// Kind classifies failures surfaced by the store, credential manager and gate.
type Kind string

const (
	KindUnauthorized       Kind = "unauthorized"
	KindNotFound           Kind = "not_found"
	KindAlreadyInitialized Kind = "already_initialized"
	KindMalformed          Kind = "malformed"
)

// Error is an opaque rejection carrying a kind and a human readable message.
// Messages must never include secret payloads, tokens or seed material.
type Error struct {
	Kind    Kind
	Message string
}

// Sentinels usable with errors.Is; any *Error of the same kind matches.
var (
	ErrUnauthorized       = &Error{Kind: KindUnauthorized, Message: "unauthorized"}
	ErrNotFound           = &Error{Kind: KindNotFound, Message: "not found"}
	ErrAlreadyInitialized = &Error{Kind: KindAlreadyInitialized, Message: "already initialized"}
	ErrMalformed          = &Error{Kind: KindMalformed, Message: "malformed input"}
)

func (e *Error) Error() string {
	if e.Message == "" {
		return "secretvars: " + string(e.Kind)
	}
	return "secretvars: " + e.Message
}

// Is matches on kind so callers can compare against the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func Unauthorized(msg string) error { return &Error{Kind: KindUnauthorized, Message: msg} }

func NotFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func AlreadyInitialized(msg string) error {
	return &Error{Kind: KindAlreadyInitialized, Message: msg}
}

func Malformed(msg string) error { return &Error{Kind: KindMalformed, Message: msg} }

// KindOf returns the kind of err, or an empty kind when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
