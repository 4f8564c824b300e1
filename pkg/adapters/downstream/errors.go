package downstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a failed downstream call
type ErrorKind string

const (
	ErrorKindTransport ErrorKind = "transport"
	ErrorKindTimeout   ErrorKind = "timeout"
	ErrorKindStatus    ErrorKind = "status"
	ErrorKindDecode    ErrorKind = "decode"
)

// Error describes a failed downstream call
type Error struct {
	Op         string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrorKindStatus:
		return fmt.Sprintf("downstream %s returned status %d", e.Op, e.StatusCode)
	case ErrorKindTimeout:
		return fmt.Sprintf("downstream %s timed out: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("downstream %s failed: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a downstream error, or "" for other errors
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// classify wraps a transport-level error from http.Client.Do
func classify(op string, err error) *Error {
	kind := ErrorKindTransport
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		kind = ErrorKindTimeout
	}
	return &Error{Op: op, Kind: kind, Err: err}
}
