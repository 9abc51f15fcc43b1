package call

import (
	"errors"
	"fmt"
)

var (
	ErrMediaUnavailable = errors.New("local media unavailable")
	ErrSignalingClosed  = errors.New("signaling connection closed")
	ErrPeerLeft         = errors.New("peer left the room")
	ErrCallClosed       = errors.New("call already closed")
	ErrBadState         = errors.New("operation not valid in current state")
)

// Error tags a failure with the operation that produced it.
type Error struct {
	Op      string
	Err     error
	Details string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

func WrapError(op string, err error, details string) *Error {
	return &Error{Op: op, Err: err, Details: details}
}
