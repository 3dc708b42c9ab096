package patch

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTypeMismatch is returned when a value or a connection doesn't match
	// the declared type of a connector.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrInvalidConnection is returned when a connection would break the
	// topology rules of the graph or doesn't exist.
	ErrInvalidConnection = errors.New("invalid connection")
	// ErrDestroyed is returned when a connector of a destroyed node is used.
	ErrDestroyed = errors.New("connector destroyed")
)

// ConnectionError is returned if connection between output and receiver
// cannot be made or removed.
type ConnectionError struct {
	Op       string
	Output   string
	Receiver string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s to %s: %v", e.Op, e.Output, e.Receiver, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// errorList wraps errors that might occure when multiple connections are
// removed at once.
type errorList []error

func (e errorList) Error() string {
	s := []string{}
	for _, se := range e {
		s = append(s, se.Error())
	}
	return strings.Join(s, ",")
}

// Is checks if any of errors match provided sentinel error.
func (e errorList) Is(err error) bool {
	for _, se := range e {
		if errors.Is(se, err) {
			return true
		}
	}
	return false
}

// ret returns the list as error, or nil when it holds no errors.
func (e errorList) ret() error {
	if len(e) > 0 {
		return e
	}
	return nil
}
