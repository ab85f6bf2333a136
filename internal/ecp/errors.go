package ecp

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// Sentinel errors for errors.Is checks at the boundary.
	ErrRejected    = errors.New("ecp: command rejected by device")
	ErrUnreachable = errors.New("ecp: device unreachable or transport failure")
	ErrTimeout     = errors.New("ecp: request timed out")
)

// CommandError is a rich error type that wraps the sentinel errors with context.
type CommandError struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error // Nested lower-level error (e.g. net.Error)
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("ecp: %s: %v", e.Operation, e.Sentinel)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Sentinel
}

// wrapError classifies a transport error or non-2xx status into a CommandError.
func wrapError(op string, status int, body string, err error) *CommandError {
	ce := &CommandError{Operation: op, Status: status, Body: body, Err: err}
	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		ce.Sentinel = ErrTimeout
	case err != nil && isNetTimeout(err):
		ce.Sentinel = ErrTimeout
	case err != nil:
		ce.Sentinel = ErrUnreachable
	default:
		ce.Sentinel = ErrRejected
	}
	return ce
}

func isNetTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
