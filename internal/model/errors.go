package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced to a user wraps exactly one of these.
var (
	// ErrConfiguration marks missing or invalid startup credentials
	ErrConfiguration = errors.New("configuration error")

	// ErrMalformedURL marks user input that does not match the expected pattern
	ErrMalformedURL = errors.New("malformed url")

	// ErrDownload marks an extraction, download or transcode failure
	ErrDownload = errors.New("download failed")

	// ErrFilesystem marks a workspace creation failure
	ErrFilesystem = errors.New("filesystem error")

	// ErrDelivery marks an attachment transfer failure
	ErrDelivery = errors.New("delivery failed")
)

// Error carries the kind of failure, the operation that produced it and the
// underlying cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

// NewError wraps err as a failure of the given kind
func NewError(kind error, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Cause returns the underlying error message, falling back to the kind
func (e *Error) Cause() string {
	if e.Err == nil {
		return e.Kind.Error()
	}
	return e.Err.Error()
}

// KindOf returns the kind sentinel of err, or nil when err is not classified
func KindOf(err error) error {
	for _, kind := range []error{ErrConfiguration, ErrMalformedURL, ErrDownload, ErrFilesystem, ErrDelivery} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
