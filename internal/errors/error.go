// Package errors defines the taxonomy of failure kinds this tool surfaces,
// generalizing the flat sentinel-error style of the reference service into a
// single tagged type so callers can recover the kind with errors.As
// regardless of the specific message attached to an occurrence.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed. Kinds are surfaced in the
// structured report and drive CLI exit behavior.
type Kind string

const (
	ManifestInvalid    Kind = "ManifestInvalid"
	UnsupportedHash    Kind = "UnsupportedHash"
	UnsupportedCipher  Kind = "UnsupportedCipher"
	MerkleMismatch     Kind = "MerkleMismatch"
	MissingFile        Kind = "MissingFile"
	HashMismatch       Kind = "HashMismatch"
	Infeasible         Kind = "Infeasible"
	DecodeFailure      Kind = "DecodeFailure"
	ShardSizeMismatch  Kind = "ShardSizeMismatch"
	DecryptionFailed   Kind = "DecryptionFailed"
	InvalidParams      Kind = "InvalidParams"
	InsufficientShards Kind = "InsufficientShards"
)

// Error is the concrete error type carrying a Kind plus a human-readable
// message and, optionally, an underlying cause.
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

// New constructs an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error of the given kind around an existing error.
func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf recovers the Kind of err, or the zero Kind if err is nil or not one
// of ours.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
