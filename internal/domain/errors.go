package domain

import (
	"errors"
	"fmt"
)

// Error is a violated domain invariant or an invalid request value. Request
// handlers turn it into a client error; it is never fatal to the process.
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

// Errorf formats a domain error.
func Errorf(format string, args ...any) error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// IsError reports whether err wraps a domain error.
func IsError(err error) bool {
	var de *Error
	return errors.As(err, &de)
}
