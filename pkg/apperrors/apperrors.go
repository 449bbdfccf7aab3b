package apperrors

import (
	"errors"
	"fmt"
)

// Kind tags an error with its place in the failure taxonomy so callers can
// branch without matching on message text.
type Kind string

const (
	KindInvalidInput  Kind = "INVALID_INPUT"
	KindUnauthorized  Kind = "UNAUTHORIZED"
	KindClassifier    Kind = "CLASSIFIER"
	KindNotFound      Kind = "NOT_FOUND"
	KindAggregation   Kind = "AGGREGATION"
	KindStorage       Kind = "STORAGE"
	KindPoolExhausted Kind = "POOL_EXHAUSTED"
	KindUnknown       Kind = "UNKNOWN"
)

// Error is an application error carrying a Kind and an optional cause.
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

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from err, or KindUnknown if err was not produced
// by this package.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// NewInvalidInput reports a rejected request payload (bad mime type, empty or
// undecodable image).
func NewInvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message}
}

// NewUnauthorized reports a missing or invalid credential.
func NewUnauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// NewClassifier reports an inference failure.
func NewClassifier(message string, err error) *Error {
	return &Error{Kind: KindClassifier, Message: message, Err: err}
}

// NewNotFound reports a predicted label with no curated catalog entry.
func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// NewAggregation reports malformed or inconsistent lookup rows.
func NewAggregation(message string) *Error {
	return &Error{Kind: KindAggregation, Message: message}
}

// NewStorage reports an upload or document-store failure.
func NewStorage(message string, err error) *Error {
	return &Error{Kind: KindStorage, Message: message, Err: err}
}

// NewPoolExhausted reports that no relational connection was available.
func NewPoolExhausted(message string, err error) *Error {
	return &Error{Kind: KindPoolExhausted, Message: message, Err: err}
}

// NewUnknown wraps an unclassified internal failure.
func NewUnknown(message string, err error) *Error {
	return &Error{Kind: KindUnknown, Message: message, Err: err}
}
