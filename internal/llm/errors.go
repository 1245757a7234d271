package llm

import (
	"errors"
	"fmt"
)

// Kind classifies an upstream failure.
type Kind string

const (
	KindNetwork       Kind = "network"
	KindTimeout       Kind = "timeout"
	KindCanceled      Kind = "canceled"
	KindStatus        Kind = "status"
	KindMalformed     Kind = "malformed_response"
	KindEmptyResponse Kind = "empty_response"
	KindRemote        Kind = "remote_error"
)

// Error is returned by Client.Generate for every failed call.
type Error struct {
	Kind Kind

	// Message is a short technical description. For KindRemote it is the
	// message reported by the upstream.
	Message string

	// StatusCode is the upstream HTTP status, zero when no response arrived.
	StatusCode int

	Err error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("llm: %s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm: %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
